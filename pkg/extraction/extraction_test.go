package extraction

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type fakeRecognizer struct {
	text map[string]string
	err  error
}

func (f *fakeRecognizer) Recognize(_ context.Context, image Image) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text[image.Filename], nil
}

type fakeParser struct {
	record models.RawExtraction
	err    error
}

func (f *fakeParser) Parse(_ context.Context, _ string) (models.RawExtraction, error) {
	return f.record, f.err
}

type fakeExtractor struct {
	calls atomic.Int32
	fail  map[string]bool
}

func (f *fakeExtractor) Extract(_ context.Context, image Image) (models.RawExtraction, error) {
	f.calls.Add(1)
	if f.fail[image.Filename] {
		return models.RawExtraction{}, errors.New("tesseract crashed")
	}
	return models.RawExtraction{FullName: "name " + image.Filename, Text: string(image.Data)}, nil
}

func TestParseFields(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected models.RawExtraction
		wantErr  bool
	}{
		{
			name:     "plain object",
			content:  `{"full_name":"Jane Doe","emails":["j@x.com"]}`,
			expected: models.RawExtraction{FullName: "Jane Doe", Emails: []string{"j@x.com"}},
		},
		{
			name:     "fenced with prose",
			content:  "Here you go:\n```json\n{\"company\":\"Acme\",\"phones\":[\"+91 98765 43210\"]}\n```",
			expected: models.RawExtraction{Company: "Acme", Phones: []string{"+91 98765 43210"}},
		},
		{
			name:     "model supplied filename and text are dropped",
			content:  `{"full_name":"Jane","filename":"x.jpg","text":"made up"}`,
			expected: models.RawExtraction{FullName: "Jane"},
		},
		{name: "no object", content: "sorry, I cannot help", wantErr: true},
		{name: "broken json", content: `{"full_name": }`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := ParseFields(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, record)
		})
	}
}

func TestCardExtractor_Extract(t *testing.T) {
	ctx := context.Background()
	image := Image{Filename: "front.jpg"}

	t.Run("parsed fields keep the OCR text", func(t *testing.T) {
		e := NewCardExtractor(
			&fakeRecognizer{text: map[string]string{"front.jpg": " JANE DOE\nCEO "}},
			&fakeParser{record: models.RawExtraction{FullName: "Jane Doe", JobTitle: "CEO"}},
			testLogger(),
		)
		record, err := e.Extract(ctx, image)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", record.FullName)
		assert.Equal(t, "JANE DOE\nCEO", record.Text)
		assert.Equal(t, "front.jpg", record.Filename)
	})

	t.Run("parse failure degrades to text only", func(t *testing.T) {
		e := NewCardExtractor(
			&fakeRecognizer{text: map[string]string{"front.jpg": "ACME PVT LTD"}},
			&fakeParser{err: errors.New("rate limited")},
			testLogger(),
		)
		record, err := e.Extract(ctx, image)
		require.NoError(t, err)
		assert.Equal(t, models.RawExtraction{Text: "ACME PVT LTD", Filename: "front.jpg"}, record)
	})

	t.Run("blank image skips the parser", func(t *testing.T) {
		e := NewCardExtractor(&fakeRecognizer{}, &fakeParser{err: errors.New("should not be called")}, testLogger())
		record, err := e.Extract(ctx, image)
		require.NoError(t, err)
		assert.True(t, record.IsEmpty())
	})

	t.Run("no parser keeps the text", func(t *testing.T) {
		e := NewCardExtractor(&fakeRecognizer{text: map[string]string{"front.jpg": "jane@acme.com"}}, nil, testLogger())
		record, err := e.Extract(ctx, image)
		require.NoError(t, err)
		assert.Equal(t, models.RawExtraction{Text: "jane@acme.com", Filename: "front.jpg"}, record)
	})

	t.Run("ocr failure is returned", func(t *testing.T) {
		e := NewCardExtractor(&fakeRecognizer{err: errors.New("bad image")}, &fakeParser{}, testLogger())
		record, err := e.Extract(ctx, image)
		assert.Error(t, err)
		assert.Equal(t, "front.jpg", record.Filename)
	})
}

func TestPipeline_ExtractBatch(t *testing.T) {
	extractor := &fakeExtractor{fail: map[string]bool{"b.jpg": true}}
	pipeline := NewPipeline(extractor, 2, testLogger())

	images := []Image{
		{Filename: "a.jpg", Data: []byte("A")},
		{Filename: "b.jpg", Data: []byte("B")},
		{Filename: "c.jpg", Data: []byte("C")},
		{Filename: "d.jpg", Data: []byte("D")},
	}

	records := pipeline.ExtractBatch(context.Background(), images)

	require.Len(t, records, 4)
	assert.Equal(t, int32(4), extractor.calls.Load())
	for i, image := range images {
		assert.Equal(t, image.Filename, records[i].Filename)
	}
	assert.Equal(t, "name a.jpg", records[0].FullName)
	assert.True(t, records[1].IsEmpty())
	assert.Equal(t, "D", records[3].Text)
}

func TestPipeline_EmptyBatch(t *testing.T) {
	pipeline := NewPipeline(&fakeExtractor{}, 0, testLogger())
	assert.Empty(t, pipeline.ExtractBatch(context.Background(), nil))
}
