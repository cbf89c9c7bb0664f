package symmem

import (
	"math"
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/stretchr/testify/require"
)

func testWorldWithBuffer(t *testing.T, worldSize, size int) (*World, *SymmBuffer) {
	t.Helper()
	w, err := NewWorld(worldSize)
	require.NoError(t, err)
	buf, err := w.AllocSymmetric(size)
	require.NoError(t, err)
	return w, buf
}

func TestLdReduceAddF32(t *testing.T) {
	const worldSize = 4
	const elems = 8
	_, buf := testWorldWithBuffer(t, worldSize, elems*4)

	// v_r[i] = (r+1) * (i+1); per-lane sum is (i+1) * world*(world+1)/2.
	for r := 0; r < worldSize; r++ {
		dst := buf.Float32(r)
		for i := 0; i < elems; i++ {
			dst[i] = float32((r + 1) * (i + 1))
		}
	}
	sumFactor := float32(worldSize*(worldSize+1)) / 2

	mc := buf.Multicast()
	for _, width := range []int{4, 8, 16} {
		lanes := width / 4
		for off := 0; off+width <= elems*4; off += width {
			vec := MultimemLdReduceAdd(mc.Offset(off), F32, width)
			require.Equal(t, width, vec.Width())
			for l, word := range vec.U32s() {
				i := off/4 + l
				want := float32(i+1) * sumFactor
				require.Equal(t, want, math.Float32frombits(word),
					"width %d offset %d lane %d/%d", width, off, l, lanes)
			}
		}
	}
}

func TestLdReduceAddBF16(t *testing.T) {
	const worldSize = 3
	const elems = 8
	_, buf := testWorldWithBuffer(t, worldSize, elems*2)

	// Small integers are exact in bfloat16, so the sums are exact too.
	for r := 0; r < worldSize; r++ {
		s := buf.BFloat16(r)
		for i := 0; i < elems; i++ {
			s.SetFloat32(i, float32((r+1)+i))
		}
	}

	mc := buf.Multicast()
	for _, width := range []int{4, 8, 16} {
		vec := MultimemLdReduceAdd(mc, BF16, width)
		got := NewBFloat16Slice(vec.Bytes())
		for i := 0; i < width/2; i++ {
			var want float32
			for r := 0; r < worldSize; r++ {
				want += float32((r + 1) + i)
			}
			require.Equal(t, want, got.GetFloat32(i), "width %d lane %d", width, i)
		}
	}
}

func TestMultimemStBroadcast(t *testing.T) {
	const worldSize = 4
	_, buf := testWorldWithBuffer(t, worldSize, 32)
	mc := buf.Multicast()

	for _, width := range []int{4, 8, 16} {
		vec := VecForWidth(width)
		pattern := vec.Bytes()
		for i := range pattern {
			pattern[i] = byte(0x10*width + i)
		}
		MultimemSt(mc.Offset(16), F32, width, vec)

		for r := 0; r < worldSize; r++ {
			copyBytes := buf.Bytes(r)
			require.Equal(t, vec.Bytes(), copyBytes[16:16+width], "rank %d width %d", r, width)
			// Bytes before the store window stay untouched.
			for i := 0; i < 16; i++ {
				require.Zero(t, copyBytes[i], "rank %d byte %d", r, i)
			}
		}
	}
}

func TestMultimemStWidthMismatch(t *testing.T) {
	_, buf := testWorldWithBuffer(t, 2, 16)
	err := exceptions.TryCatch[error](func() {
		MultimemSt(buf.Multicast(), F32, 16, VecForWidth(8))
	})
	require.ErrorContains(t, err, "does not match")
}

func TestUnsupportedDTypeFatal(t *testing.T) {
	_, buf := testWorldWithBuffer(t, 2, 16)
	mc := buf.Multicast()

	for _, width := range []int{4, 8, 16} {
		err := exceptions.TryCatch[error](func() { MultimemLdReduceAdd(mc, F16, width) })
		require.ErrorContains(t, err, "unsupported", "ld_reduce f16/%d", width)
		err = exceptions.TryCatch[error](func() { MultimemSt(mc, F16, width, VecForWidth(width)) })
		require.ErrorContains(t, err, "unsupported", "st f16/%d", width)
	}

	// Widths outside {4,8,16} have no capability entry for any dtype.
	err := exceptions.TryCatch[error](func() { MultimemLdReduceAdd(mc, F32, 2) })
	require.Error(t, err)
}

func TestUnsupportedBackendFatal(t *testing.T) {
	saved := multimemBackend
	defer func() { multimemBackend = saved }()
	multimemBackend = &unsupportedMultimem{reason: "multicast instructions require a newer toolchain"}

	_, buf := testWorldWithBuffer(t, 2, 16)
	err := exceptions.TryCatch[error](func() { MultimemLdReduceAdd(buf.Multicast(), F32, 16) })
	require.ErrorContains(t, err, "unavailable")
	require.ErrorContains(t, err, "f32/16")
	err = exceptions.TryCatch[error](func() { MultimemSt(buf.Multicast(), BF16, 8, VecForWidth(8)) })
	require.ErrorContains(t, err, "unavailable")
}

func TestWideNarrowEquivalence(t *testing.T) {
	const worldSize = 3
	const elems = 8
	_, buf := testWorldWithBuffer(t, worldSize, elems*4)

	for r := 0; r < worldSize; r++ {
		dst := buf.Float32(r)
		for i := 0; i < elems; i++ {
			dst[i] = float32(r+1) * (float32(i) + 0.25)
		}
	}

	narrow := supportedCaps(false)
	wide := supportedCaps(true)
	mc := buf.Multicast()

	for _, dt := range []DType{F32, BF16} {
		for _, width := range []int{4, 8, 16} {
			key := capKey{dt, width}
			got := wide[key].ldReduceAdd(mc, width)
			want := narrow[key].ldReduceAdd(mc, width)
			require.Equal(t, want.Bytes(), got.Bytes(), "ld_reduce %s", key)
		}
	}

	// Both store paths leave identical bytes on every rank.
	for _, width := range []int{4, 8, 16} {
		vec := VecForWidth(width)
		pattern := vec.Bytes()
		for i := range pattern {
			pattern[i] = byte(0xA0 + i)
		}
		key := capKey{F32, width}

		for r := 0; r < worldSize; r++ {
			for i := range buf.Bytes(r) {
				buf.Bytes(r)[i] = 0
			}
		}
		narrow[key].st(mc, width, vec)
		wantCopies := make([][]byte, worldSize)
		for r := 0; r < worldSize; r++ {
			wantCopies[r] = append([]byte(nil), buf.Bytes(r)...)
		}

		for r := 0; r < worldSize; r++ {
			for i := range buf.Bytes(r) {
				buf.Bytes(r)[i] = 0
			}
		}
		wide[key].st(mc, width, vec)
		for r := 0; r < worldSize; r++ {
			require.Equal(t, wantCopies[r], buf.Bytes(r), "st width %d rank %d", width, r)
		}
	}
}

func TestBackendFeatureReport(t *testing.T) {
	// The word width is fixed at selection time from the host baseline and
	// reported consistently afterwards.
	require.Equal(t, hasWideWordBaseline(), MultimemWideWords())
	features := CPUFeatures()
	require.NotEmpty(t, features)
	if MultimemWideWords() {
		require.NotEqual(t, []string{"none"}, features)
	}
}

func TestMulticastPtrAlignment(t *testing.T) {
	_, buf := testWorldWithBuffer(t, 3, 64)
	mc := buf.Multicast()
	require.Equal(t, 16, mc.Alignment())
	require.Equal(t, 8, mc.Offset(8).Alignment())
	require.Equal(t, 4, mc.Offset(4).Alignment())
	require.Equal(t, 2, mc.Offset(2).Alignment())
	require.Equal(t, 1, mc.Offset(1).Alignment())
	require.Equal(t, 3, mc.NumRanks())
}

func TestCapabilityMatrix(t *testing.T) {
	caps := CapabilityMatrix()
	require.Len(t, caps, 6)
	seen := make(map[Capability]bool)
	for _, c := range caps {
		seen[c] = true
	}
	for _, dt := range []string{"f32", "bf16"} {
		for _, width := range []int{4, 8, 16} {
			require.True(t, seen[Capability{DType: dt, Width: width}], "%s/%d missing", dt, width)
		}
	}
	require.Equal(t, "loopback", MultimemBackendName())
}
