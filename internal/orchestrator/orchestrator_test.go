package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/user/alttext-service/internal/applier"
	"github.com/user/alttext-service/internal/domain"
)

type MockImageSource struct{ mock.Mock }

func (m *MockImageSource) FindImagesWithoutDescription(ctx context.Context, pages []string) []domain.ImageDescriptor {
	args := m.Called(ctx, pages)
	return args.Get(0).([]domain.ImageDescriptor)
}

type MockBatchGenerator struct{ mock.Mock }

func (m *MockBatchGenerator) GenerateBatch(ctx context.Context, images []domain.ImageDescriptor, maxCount int) map[string]domain.GenerationResult {
	args := m.Called(ctx, images, maxCount)
	return args.Get(0).(map[string]domain.GenerationResult)
}

type MockRecordWriter struct{ mock.Mock }

func (m *MockRecordWriter) WriteRecord(ctx context.Context, record *domain.BatchRecord) error {
	return m.Called(ctx, record).Error(0)
}

type MockApplier struct{ mock.Mock }

func (m *MockApplier) Apply(ctx context.Context, assignments []domain.ApplyAssignment) (domain.ApplyReport, error) {
	args := m.Called(ctx, assignments)
	return args.Get(0).(domain.ApplyReport), args.Error(1)
}

const site = "https://example.framer.app"

func TestRunNoUndescribedImagesExitsEarly(t *testing.T) {
	source := new(MockImageSource)
	source.On("FindImagesWithoutDescription", mock.Anything, []string{""}).Return([]domain.ImageDescriptor{})
	gen := new(MockBatchGenerator)
	writer := new(MockRecordWriter)

	record, err := New(source, gen, WithWriters(writer)).Run(context.Background(), RunOptions{SiteURL: site, Pages: []string{""}})

	require.NoError(t, err)
	assert.Nil(t, record)
	gen.AssertNotCalled(t, "GenerateBatch", mock.Anything, mock.Anything, mock.Anything)
	writer.AssertNotCalled(t, "WriteRecord", mock.Anything, mock.Anything)
}

func TestRunBuildsRecordInDiscoveryOrder(t *testing.T) {
	images := []domain.ImageDescriptor{
		{URL: site + "/1.png", Locator: "img#one", ElementID: "one"},
		{URL: site + "/2.png", Locator: "img.two"},
		{URL: site + "/3.png", Locator: "div"},
	}
	source := new(MockImageSource)
	source.On("FindImagesWithoutDescription", mock.Anything, mock.Anything).Return(images)

	gen := new(MockBatchGenerator)
	gen.On("GenerateBatch", mock.Anything, images, 2).Return(map[string]domain.GenerationResult{
		site + "/2.png": {URL: site + "/2.png", Status: domain.StatusFailed},
		site + "/1.png": {URL: site + "/1.png", Text: "A boat", Status: domain.StatusGenerated},
	})

	writer := new(MockRecordWriter)
	writer.On("WriteRecord", mock.Anything, mock.Anything).Return(nil)

	record, err := New(source, gen, WithWriters(writer)).Run(context.Background(), RunOptions{SiteURL: site, MaxCount: 2})

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 2, record.ImagesProcessed)
	assert.Equal(t, []domain.BatchEntry{
		{URL: site + "/1.png", Locator: "img#one", ElementID: "one", GeneratedText: "A boat", Status: domain.StatusGenerated},
		{URL: site + "/2.png", Locator: "img.two", Status: domain.StatusFailed},
	}, record.Results)
	writer.AssertCalled(t, "WriteRecord", mock.Anything, record)
}

func TestRunJoinsWriterErrors(t *testing.T) {
	images := []domain.ImageDescriptor{{URL: site + "/1.png"}}
	source := new(MockImageSource)
	source.On("FindImagesWithoutDescription", mock.Anything, mock.Anything).Return(images)
	gen := new(MockBatchGenerator)
	gen.On("GenerateBatch", mock.Anything, mock.Anything, mock.Anything).Return(map[string]domain.GenerationResult{
		site + "/1.png": {Text: "x", Status: domain.StatusGenerated},
	})

	failing := new(MockRecordWriter)
	failing.On("WriteRecord", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	working := new(MockRecordWriter)
	working.On("WriteRecord", mock.Anything, mock.Anything).Return(nil)

	record, err := New(source, gen, WithWriters(failing, working)).Run(context.Background(), RunOptions{SiteURL: site})

	assert.ErrorContains(t, err, "disk full")
	assert.NotNil(t, record)
	working.AssertNumberOfCalls(t, "WriteRecord", 1)
}

func TestRunAutoApply(t *testing.T) {
	images := []domain.ImageDescriptor{
		{URL: site + "/1.png", Locator: "img#one", ElementID: "one"},
		{URL: site + "/2.png", Locator: "img.two"},
	}
	source := new(MockImageSource)
	source.On("FindImagesWithoutDescription", mock.Anything, mock.Anything).Return(images)
	gen := new(MockBatchGenerator)
	gen.On("GenerateBatch", mock.Anything, mock.Anything, mock.Anything).Return(map[string]domain.GenerationResult{
		site + "/1.png": {Text: "A boat", Status: domain.StatusGenerated},
		site + "/2.png": {Status: domain.StatusFailed},
	})
	applier := new(MockApplier)
	applier.On("Apply", mock.Anything, []domain.ApplyAssignment{{Locator: "img#one", ElementID: "one", Text: "A boat"}}).
		Return(domain.ApplyReport{Applied: 1}, nil)

	_, err := New(source, gen, WithApplier(applier)).Run(context.Background(), RunOptions{SiteURL: site, AutoApply: true})

	require.NoError(t, err)
	applier.AssertExpectations(t)
}

func TestRunApplyFailureIsNotFatal(t *testing.T) {
	images := []domain.ImageDescriptor{{URL: site + "/1.png", Locator: "img"}}
	source := new(MockImageSource)
	source.On("FindImagesWithoutDescription", mock.Anything, mock.Anything).Return(images)
	gen := new(MockBatchGenerator)
	gen.On("GenerateBatch", mock.Anything, mock.Anything, mock.Anything).Return(map[string]domain.GenerationResult{
		site + "/1.png": {Text: "A boat", Status: domain.StatusGenerated},
	})
	applier := new(MockApplier)
	applier.On("Apply", mock.Anything, mock.Anything).Return(domain.ApplyReport{}, errors.New("chrome not found"))

	record, err := New(source, gen, WithApplier(applier)).Run(context.Background(), RunOptions{SiteURL: site, AutoApply: true})

	require.NoError(t, err)
	assert.Equal(t, 1, record.ImagesProcessed)
}

func TestBuildRecordKeepsEveryElementOfRepeatedURL(t *testing.T) {
	images := []domain.ImageDescriptor{
		{URL: "https://s/logo.png", Locator: "img#header-logo", ElementID: "header-logo"},
		{URL: "https://s/hero.png", Locator: "img.hero"},
		{URL: "https://s/logo.png", Locator: "img#footer-logo", ElementID: "footer-logo"},
	}
	results := map[string]domain.GenerationResult{
		"https://s/logo.png": {URL: "https://s/logo.png", Text: "Company logo", Status: domain.StatusGenerated},
	}

	record := BuildRecord(site, images, results)

	assert.Equal(t, 1, record.ImagesProcessed)
	assert.Equal(t, []domain.BatchEntry{
		{URL: "https://s/logo.png", Locator: "img#header-logo", ElementID: "header-logo", GeneratedText: "Company logo", Status: domain.StatusGenerated},
		{URL: "https://s/logo.png", Locator: "img#footer-logo", ElementID: "footer-logo", GeneratedText: "Company logo", Status: domain.StatusGenerated},
	}, record.Results)

	assert.Equal(t, []domain.ApplyAssignment{
		{Locator: "img#header-logo", ElementID: "header-logo", Text: "Company logo"},
		{Locator: "img#footer-logo", ElementID: "footer-logo", Text: "Company logo"},
	}, applier.UsableAssignments(record.Results))
}

func TestFileRecordWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alt_text_results.json")
	var echo bytes.Buffer
	w := &FileRecordWriter{Path: path, Echo: &echo}

	record := &domain.BatchRecord{
		SiteURL:         site,
		ImagesProcessed: 1,
		Results: []domain.BatchEntry{
			{URL: site + "/1.png", Locator: "img", ElementID: "", GeneratedText: "A boat", Status: domain.StatusGenerated},
		},
	}
	require.NoError(t, w.WriteRecord(context.Background(), record))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"site_url\"")
	assert.Contains(t, echo.String(), `"generated_alt_text": "A boat"`)

	var decoded domain.BatchRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *record, decoded)
}
