package digest

import (
	"encoding/binary"
	"encoding/hex"
	"math/bits"
)

const (
	// Size is the length of a digest in bytes.
	Size = 16
	// BlockSize is the block size of the compression function in bytes.
	BlockSize = 64
)

const (
	init0 = 0x67452301
	init1 = 0xefcdab89
	init2 = 0x98badcfe
	init3 = 0x10325476
)

// table holds floor(abs(sin(i+1)) * 2^32) for i in [0, 64).
var table = [64]uint32{
	0xd76aa478, 0xe8c7b756, 0x242070db, 0xc1bdceee,
	0xf57c0faf, 0x4787c62a, 0xa8304613, 0xfd469501,
	0x698098d8, 0x8b44f7af, 0xffff5bb1, 0x895cd7be,
	0x6b901122, 0xfd987193, 0xa679438e, 0x49b40821,
	0xf61e2562, 0xc040b340, 0x265e5a51, 0xe9b6c7aa,
	0xd62f105d, 0x02441453, 0xd8a1e681, 0xe7d3fbc8,
	0x21e1cde6, 0xc33707d6, 0xf4d50d87, 0x455a14ed,
	0xa9e3e905, 0xfcefa3f8, 0x676f02d9, 0x8d2a4c8a,
	0xfffa3942, 0x8771f681, 0x6d9d6122, 0xfde5380c,
	0xa4beea44, 0x4bdecfa9, 0xf6bb4b60, 0xbebfbc70,
	0x289b7ec6, 0xeaa127fa, 0xd4ef3085, 0x04881d05,
	0xd9d4d039, 0xe6db99e5, 0x1fa27cf8, 0xc4ac5665,
	0xf4292244, 0x432aff97, 0xab9423a7, 0xfc93a039,
	0x655b59c3, 0x8f0ccc92, 0xffeff47d, 0x85845dd1,
	0x6fa87e4f, 0xfe2ce6e0, 0xa3014314, 0x4e0811a1,
	0xf7537e82, 0xbd3af235, 0x2ad7d2bb, 0xeb86d391,
}

// shifts holds the per-round left-rotation amounts.
var shifts = [4][4]int{
	{7, 12, 17, 22},
	{5, 9, 14, 20},
	{4, 11, 16, 23},
	{6, 10, 15, 21},
}

// Digest is a 128-bit MD5 value.
type Digest [Size]byte

// String renders the digest as 32 lowercase hex characters.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Equal reports whether two digests are identical.
func (d Digest) Equal(other Digest) bool {
	return d == other
}

// Sum returns the digest of data.
func Sum(data []byte) Digest {
	h := newState()
	h.Write(data)
	return h.checkSum()
}

type state struct {
	s   [4]uint32
	x   [BlockSize]byte
	nx  int
	len uint64
}

func newState() *state {
	return &state{s: [4]uint32{init0, init1, init2, init3}}
}

func (d *state) Write(p []byte) (int, error) {
	n := len(p)
	d.len += uint64(n)

	if d.nx > 0 {
		c := copy(d.x[d.nx:], p)
		d.nx += c
		p = p[c:]
		if d.nx == BlockSize {
			d.block(d.x[:])
			d.nx = 0
		}
	}
	for len(p) >= BlockSize {
		d.block(p[:BlockSize])
		p = p[BlockSize:]
	}
	if len(p) > 0 {
		d.nx = copy(d.x[:], p)
	}
	return n, nil
}

func (d *state) checkSum() Digest {
	msgLen := d.len

	// 0x80 then zeros up to 56 mod 64, then the bit length little-endian.
	var tmp [BlockSize + 8]byte
	tmp[0] = 0x80
	pad := (55 - msgLen) % BlockSize
	binary.LittleEndian.PutUint64(tmp[1+pad:], msgLen<<3)
	d.Write(tmp[:1+pad+8])

	if d.nx != 0 {
		panic("digest: padding did not end on a block boundary")
	}

	var out Digest
	for i, v := range d.s {
		binary.LittleEndian.PutUint32(out[4*i:], v)
	}
	return out
}

// block runs the compression function over one 64-byte block.
func (d *state) block(p []byte) {
	var m [16]uint32
	for i := range m {
		m[i] = binary.LittleEndian.Uint32(p[4*i:])
	}

	a, b, c, dd := d.s[0], d.s[1], d.s[2], d.s[3]

	for i := 0; i < 64; i++ {
		var f uint32
		var g int
		round := i / 16
		switch round {
		case 0:
			f = (b & c) | (^b & dd)
			g = i
		case 1:
			f = (b & dd) | (c &^ dd)
			g = (5*i + 1) % 16
		case 2:
			f = b ^ c ^ dd
			g = (3*i + 5) % 16
		default:
			f = c ^ (b | ^dd)
			g = (7 * i) % 16
		}
		f += a + table[i] + m[g]
		a = dd
		dd = c
		c = b
		b += bits.RotateLeft32(f, shifts[round][i%4])
	}

	d.s[0] += a
	d.s[1] += b
	d.s[2] += c
	d.s[3] += dd
}
