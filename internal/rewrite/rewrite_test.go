// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rewrite

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/to-webp/internal/recode"
	"github.com/pdiddy/to-webp/internal/reference"
	"github.com/pdiddy/to-webp/pkg/types"
)

const (
	postsDir  = "/site/_posts"
	imagesDir = "/site/images"
)

// stubEncoder stands in for the WebP encoder so tests do not depend on
// codec output.
type stubEncoder struct{}

func (stubEncoder) Encode(w io.Writer, img image.Image) error {
	_, err := io.WriteString(w, "webp-bytes")
	return err
}

// scriptedRecoder records calls and fails for the listed source paths.
type scriptedRecoder struct {
	calls []string
	fail  map[string]error
}

func (s *scriptedRecoder) Recode(ctx context.Context, sourcePath, targetPath string) (types.RecodeResult, error) {
	s.calls = append(s.calls, sourcePath)
	if err, ok := s.fail[sourcePath]; ok {
		return types.RecodeResult{Status: types.RecodeFailed}, err
	}
	return types.RecodeResult{Status: types.RecodeConverted}, nil
}

func pngData(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(postsDir, 0o755))
	require.NoError(t, fs.MkdirAll(imagesDir, 0o755))
	return fs
}

func put(t *testing.T, fs afero.Fs, path string, data []byte) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, data, 0o644))
}

func read(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func imageFiles(t *testing.T, fs afero.Fs) []string {
	t.Helper()
	var files []string
	require.NoError(t, afero.Walk(fs, imagesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, path)
		}
		return nil
	}))
	sort.Strings(files)
	return files
}

func newRealPipeline(fs afero.Fs) *Pipeline {
	logger := zerolog.New(io.Discard)
	return New(fs, recode.New(fs, stubEncoder{}, logger), logger)
}

func TestProcessDocument_ConvertsJPGPost(t *testing.T) {
	fs := newFs(t)
	doc := postsDir + "/2023-04-01-cat.md"
	put(t, fs, doc, []byte(`A![]({{ "/images/2023/04/cat.jpg" | prepend: site.baseurl }})B`))
	put(t, fs, imagesDir+"/2023/04/cat.jpg", pngData(t))

	result, err := newRealPipeline(fs).ProcessDocument(context.Background(), doc, imagesDir)
	require.NoError(t, err)

	assert.Equal(t, types.DocumentRewritten, result.Status)
	assert.Equal(t, 1, result.References)
	assert.Equal(t, 1, result.Converted)
	assert.Equal(t, `A![]({{ "/images/2023/04/cat.webp" | prepend: site.baseurl }})B`, read(t, fs, doc))
	assert.Equal(t, []string{imagesDir + "/2023/04/cat.webp"}, imageFiles(t, fs))
}

func TestProcessDocument_Idempotent(t *testing.T) {
	fs := newFs(t)
	doc := postsDir + "/post.md"
	put(t, fs, doc, []byte("intro\n"+
		`![]({{"/images/2022/1/a.png"|prepend:site.baseurl}})`+"\n"+
		reference.Format("2022", "02", "b", "gif")+"\n"+
		reference.Format("2022", "02", "b", "gif")+"\nend\n"))
	put(t, fs, imagesDir+"/2022/1/a.png", pngData(t))
	put(t, fs, imagesDir+"/2022/02/b.gif", pngData(t))

	p := newRealPipeline(fs)
	first, err := p.ProcessDocument(context.Background(), doc, imagesDir)
	require.NoError(t, err)
	assert.Equal(t, types.DocumentRewritten, first.Status)
	assert.Equal(t, 2, first.Converted)
	assert.Equal(t, 1, first.Skipped, "second reference to b.gif finds it already converted")

	textAfterFirst := read(t, fs, doc)
	filesAfterFirst := imageFiles(t, fs)

	second, err := p.ProcessDocument(context.Background(), doc, imagesDir)
	require.NoError(t, err)
	assert.Equal(t, types.DocumentUnchanged, second.Status)
	assert.Equal(t, 0, second.Converted)
	assert.Equal(t, 3, second.Skipped)

	assert.Equal(t, textAfterFirst, read(t, fs, doc))
	assert.Equal(t, filesAfterFirst, imageFiles(t, fs))
	assert.Equal(t, []string{
		imagesDir + "/2022/02/b.webp",
		imagesDir + "/2022/1/a.webp",
	}, filesAfterFirst)
}

func TestProcessDocument_RepairsTextAfterEarlierConversion(t *testing.T) {
	fs := newFs(t)
	doc := postsDir + "/post.md"
	original := "x " + reference.Format("2020", "05", "done", "jpg") + " y"
	put(t, fs, doc, []byte(original))
	put(t, fs, imagesDir+"/2020/05/done.webp", []byte("from an earlier run"))

	result, err := newRealPipeline(fs).ProcessDocument(context.Background(), doc, imagesDir)
	require.NoError(t, err)
	assert.Equal(t, types.DocumentRewritten, result.Status)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "x "+reference.Format("2020", "05", "done", "webp")+" y", read(t, fs, doc))
	assert.Equal(t, "from an earlier run", read(t, fs, imagesDir+"/2020/05/done.webp"))
}

func TestProcessDocument_NoReferences(t *testing.T) {
	fs := newFs(t)
	doc := postsDir + "/plain.md"
	content := "---\ntitle: plain\n---\n\n![alt](/images/2020/01/x.png)\n"
	put(t, fs, doc, []byte(content))

	rec := &scriptedRecoder{}
	result, err := New(fs, rec, zerolog.New(io.Discard)).ProcessDocument(context.Background(), doc, imagesDir)
	require.NoError(t, err)
	assert.Equal(t, types.DocumentUnchanged, result.Status)
	assert.Empty(t, rec.calls)
	assert.Equal(t, content, read(t, fs, doc))
}

func TestProcessDocument_OrderPreserved(t *testing.T) {
	fs := newFs(t)
	doc := postsDir + "/three.md"
	text := "<p>one</p>" + reference.Format("2021", "03", "r1", "png") +
		"\n\ntwo " + reference.Format("2021", "03", "r2", "jpg") +
		"three\n" + reference.Format("2021", "04", "r3", "gif") + "\n"
	put(t, fs, doc, []byte(text))

	rec := &scriptedRecoder{}
	_, err := New(fs, rec, zerolog.New(io.Discard)).ProcessDocument(context.Background(), doc, imagesDir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		imagesDir + "/2021/03/r1.png",
		imagesDir + "/2021/03/r2.jpg",
		imagesDir + "/2021/04/r3.gif",
	}, rec.calls)

	want := "<p>one</p>" + reference.Format("2021", "03", "r1", "webp") +
		"\n\ntwo " + reference.Format("2021", "03", "r2", "webp") +
		"three\n" + reference.Format("2021", "04", "r3", "webp") + "\n"
	assert.Equal(t, want, read(t, fs, doc))
}

func TestProcessDocument_MalformedTouchesNothing(t *testing.T) {
	fs := newFs(t)
	doc := postsDir + "/bad.md"
	text := reference.Format("2021", "03", "fine", "png") +
		`![]({{ "/images/2021/march/bad.png" | prepend: site.baseurl }})`
	put(t, fs, doc, []byte(text))

	rec := &scriptedRecoder{}
	result, err := New(fs, rec, zerolog.New(io.Discard)).ProcessDocument(context.Background(), doc, imagesDir)
	require.Error(t, err)
	assert.ErrorIs(t, err, reference.ErrMalformedReference)
	assert.Equal(t, types.DocumentFailed, result.Status)
	assert.Empty(t, rec.calls, "no image may be converted when a reference is malformed")
	assert.Equal(t, text, read(t, fs, doc))
}

func TestProcessDocument_RecodeFailureLeavesTextUntouched(t *testing.T) {
	fs := newFs(t)
	doc := postsDir + "/fail.md"
	text := reference.Format("2021", "03", "ok", "png") + " and " +
		reference.Format("2021", "03", "broken", "png") + " and " +
		reference.Format("2021", "03", "never", "png")
	put(t, fs, doc, []byte(text))

	boom := errors.New("decode failed")
	rec := &scriptedRecoder{fail: map[string]error{imagesDir + "/2021/03/broken.png": boom}}
	result, err := New(fs, rec, zerolog.New(io.Discard)).ProcessDocument(context.Background(), doc, imagesDir)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), doc)
	assert.Equal(t, types.DocumentFailed, result.Status)
	assert.Equal(t, []string{
		imagesDir + "/2021/03/ok.png",
		imagesDir + "/2021/03/broken.png",
	}, rec.calls, "processing stops at the first failure")
	assert.Equal(t, text, read(t, fs, doc))
}

func TestProcessDocument_MissingImage(t *testing.T) {
	fs := newFs(t)
	doc := postsDir + "/missing.md"
	text := reference.Format("2019", "09", "ghost", "jpg")
	put(t, fs, doc, []byte(text))

	_, err := newRealPipeline(fs).ProcessDocument(context.Background(), doc, imagesDir)
	require.Error(t, err)
	assert.ErrorIs(t, err, recode.ErrConversion)
	assert.Equal(t, text, read(t, fs, doc))
}

func TestProcessDocument_MissingWebPReferenceFails(t *testing.T) {
	fs := newFs(t)
	doc := postsDir + "/gone.md"
	text := "see " + reference.Format("2023", "04", "gone", "webp") + "\n"
	put(t, fs, doc, []byte(text))

	result, err := newRealPipeline(fs).ProcessDocument(context.Background(), doc, imagesDir)
	require.Error(t, err)
	assert.ErrorIs(t, err, recode.ErrConversion)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, types.DocumentFailed, result.Status)
	assert.Zero(t, result.Skipped)
	assert.Equal(t, text, read(t, fs, doc))
	assert.Empty(t, imageFiles(t, fs))
}

func TestProcessDocument_PreservesMode(t *testing.T) {
	fs := newFs(t)
	doc := postsDir + "/private.md"
	require.NoError(t, afero.WriteFile(fs, doc, []byte(reference.Format("2020", "01", "a", "png")), 0o600))

	rec := &scriptedRecoder{}
	_, err := New(fs, rec, zerolog.New(io.Discard)).ProcessDocument(context.Background(), doc, imagesDir)
	require.NoError(t, err)

	info, err := fs.Stat(doc)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
