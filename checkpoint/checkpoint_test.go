// SPDX-License-Identifier: MIT

package checkpoint_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/sseq/checkpoint"
	"github.com/katalvlaran/sseq/fp"
)

func sampleRecord(t *testing.T) checkpoint.Record {
	t.Helper()
	p := fp.MustPrime(3)
	m, err := fp.FromRows(p, 4, []fp.Vector{
		fp.VectorFrom(p, []int64{1, 0, 2, 0}),
		fp.VectorFrom(p, []int64{0, 0, 0, 1}),
		fp.VectorFrom(p, []int64{0, 2, 0, 0}),
	})
	require.NoError(t, err)

	return checkpoint.Record{Prime: 3, Algebra: 0x4d494c4e, S: 2, T: 9, Differential: m}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "s3_t17.res", checkpoint.Key(3, 17))
	s, tt, ok := checkpoint.ParseKey("S_2-milnor-p2/s3_t17.res")
	require.True(t, ok)
	assert.Equal(t, 3, s)
	assert.Equal(t, 17, tt)
	for _, bad := range []string{"s3_t17", "x.res", "s3_t17.res.tmp", "s03_t17.res"} {
		_, _, ok := checkpoint.ParseKey(bad)
		assert.False(t, ok, bad)
	}
	assert.Equal(t, "C2-adem-p2", checkpoint.ConfigPrefix("C2", "adem", 2))
	assert.Equal(t, "S_2_1_-milnor-p2", checkpoint.ConfigPrefix("S_2/1 ", "milnor", 2))
}

func TestRecordRoundTrip(t *testing.T) {
	rec := sampleRecord(t)
	for _, compress := range []bool{false, true} {
		data, err := checkpoint.Encode(rec, checkpoint.Options{Compress: compress})
		require.NoError(t, err)
		again, err := checkpoint.Encode(rec, checkpoint.Options{Compress: compress})
		require.NoError(t, err)
		assert.Equal(t, data, again, "encoding is deterministic")
		assert.Equal(t, "SSQR", string(data[:4]))

		got, err := checkpoint.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, rec.Prime, got.Prime)
		assert.Equal(t, rec.Algebra, got.Algebra)
		assert.Equal(t, rec.S, got.S)
		assert.Equal(t, rec.T, got.T)
		assert.Equal(t, 3, got.Generators())
		assert.True(t, rec.Differential.Equal(got.Differential))
	}
}

func TestRecordEmptyAndNegativeT(t *testing.T) {
	p := fp.MustPrime(2)
	rec := checkpoint.Record{Prime: 2, Algebra: 1, S: 0, T: -3, Differential: fp.NewMatrix(p, 0, 5)}
	data, err := checkpoint.Encode(rec, checkpoint.Options{})
	require.NoError(t, err)
	got, err := checkpoint.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, -3, got.T)
	assert.Equal(t, 0, got.Generators())
	assert.Equal(t, 5, got.Differential.Cols())
}

func TestDecodeCorrupt(t *testing.T) {
	data, err := checkpoint.Encode(sampleRecord(t), checkpoint.Options{})
	require.NoError(t, err)

	cases := map[string][]byte{
		"short":    data[:10],
		"truncate": data[:len(data)-1],
		"magic":    append([]byte("XXXX"), data[4:]...),
	}
	flipped := bytes.Clone(data)
	flipped[40] ^= 0xff
	cases["checksum"] = flipped
	version := bytes.Clone(data)
	version[4] = 9
	cases["version"] = version

	for name, in := range cases {
		_, err := checkpoint.Decode(in)
		assert.ErrorIs(t, err, checkpoint.ErrCorrupt, name)
	}
}

func TestVerify(t *testing.T) {
	rec := sampleRecord(t)
	want := checkpoint.Expect{Prime: 3, Algebra: 0x4d494c4e, S: 2, T: 9, Columns: 4}
	require.NoError(t, rec.Verify(want))

	w := want
	w.Prime = 5
	assert.ErrorIs(t, rec.Verify(w), checkpoint.ErrAlgebraMismatch)
	w = want
	w.Algebra = 0x4144454d
	assert.ErrorIs(t, rec.Verify(w), checkpoint.ErrAlgebraMismatch)
	w = want
	w.T = 10
	assert.ErrorIs(t, rec.Verify(w), checkpoint.ErrHeaderMismatch)
	w = want
	w.Columns = 7
	assert.ErrorIs(t, rec.Verify(w), checkpoint.ErrHeaderMismatch)
	w.Columns = -1
	assert.NoError(t, rec.Verify(w))

	data, err := checkpoint.Encode(rec, checkpoint.Options{Compress: true})
	require.NoError(t, err)
	_, err = checkpoint.DecodeExpect(data, checkpoint.Expect{Prime: 2, Algebra: 0x4d494c4e, S: 2, T: 9, Columns: -1})
	assert.ErrorIs(t, err, checkpoint.ErrAlgebraMismatch)
}

// fakeS3 is an in-memory S3API.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data

	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}

	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Prefix)
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, strings.TrimPrefix(k, aws.ToString(in.Bucket)+"/"))
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}

	return out, nil
}

func backends(t *testing.T) map[string]checkpoint.Store {
	t.Helper()
	dir := t.TempDir()
	fs, err := checkpoint.NewFS(filepath.Join(dir, "fs"))
	require.NoError(t, err)
	bdg, err := checkpoint.OpenBadger(checkpoint.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	sq, err := checkpoint.OpenSQLite(context.Background(), filepath.Join(dir, "db", "ckpt.db"))
	require.NoError(t, err)
	stores := map[string]checkpoint.Store{
		"memory": checkpoint.NewMemory(),
		"fs":     fs,
		"badger": bdg,
		"sqlite": sq,
		"s3":     checkpoint.NewS3(&fakeS3{}, "bucket", "runs"),
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})

	return stores
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Get(ctx, "s0_t0.res")
			require.ErrorIs(t, err, checkpoint.ErrNotFound)

			require.NoError(t, st.Put(ctx, "s1_t2.res", []byte("b")))
			require.NoError(t, st.Put(ctx, "s0_t0.res", []byte("a")))
			require.NoError(t, st.Put(ctx, "s1_t2.res", []byte("c")))

			got, err := st.Get(ctx, "s1_t2.res")
			require.NoError(t, err)
			assert.Equal(t, []byte("c"), got)

			keys, err := st.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"s0_t0.res", "s1_t2.res"}, keys)

			view := checkpoint.WithPrefix(st, "cfg")
			require.NoError(t, view.Put(ctx, "s2_t4.res", []byte("d")))
			keys, err = view.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"s2_t4.res"}, keys)
			got, err = st.Get(ctx, "cfg/s2_t4.res")
			require.NoError(t, err)
			assert.Equal(t, []byte("d"), got)
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, loc := range []string{
		filepath.Join(dir, "plain"),
		"file://" + filepath.ToSlash(filepath.Join(dir, "file")),
		"mem://",
		"badger://memory",
		"sqlite://" + filepath.ToSlash(filepath.Join(dir, "x.db")),
	} {
		st, err := checkpoint.Open(ctx, loc)
		require.NoError(t, err, loc)
		require.NoError(t, st.Put(ctx, "s0_t0.res", []byte{1}), loc)
		require.NoError(t, st.Close(), loc)
	}

	_, err := checkpoint.Open(ctx, "ftp://host/x")
	assert.ErrorIs(t, err, checkpoint.ErrUnknownScheme)
	_, err = checkpoint.Open(ctx, "")
	assert.ErrorIs(t, err, checkpoint.ErrUnknownScheme)
}

// flaky fails its first n writes.
type flaky struct {
	checkpoint.Store
	fails int
	err   error
	calls int
}

func (f *flaky) Put(ctx context.Context, key string, data []byte) error {
	f.calls++
	if f.calls <= f.fails {
		return f.err
	}

	return f.Store.Put(ctx, key, data)
}

func TestPutWithRetry(t *testing.T) {
	ctx := context.Background()
	policy := checkpoint.RetryPolicy{Attempts: 4, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	st := &flaky{Store: checkpoint.NewMemory(), fails: 2, err: &checkpoint.IOError{Op: "put", Key: "k", Err: errors.New("disk")}}
	require.NoError(t, checkpoint.PutWithRetry(ctx, st, "k", []byte("v"), policy, nil))
	assert.Equal(t, 3, st.calls)

	st = &flaky{Store: checkpoint.NewMemory(), fails: 10, err: &checkpoint.IOError{Op: "put", Key: "k", Err: errors.New("disk")}}
	err := checkpoint.PutWithRetry(ctx, st, "k", []byte("v"), policy, nil)
	var ioe *checkpoint.IOError
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, 4, st.calls)

	boom := errors.New("boom")
	st = &flaky{Store: checkpoint.NewMemory(), fails: 10, err: boom}
	err = checkpoint.PutWithRetry(ctx, st, "k", []byte("v"), policy, nil)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, st.calls)
}
