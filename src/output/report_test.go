package output

import (
	"bytes"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/hbdeploy/src/artifact"
	"github.com/sofmeright/hbdeploy/src/sourcemap"
)

func sampleResult() *sourcemap.Result {
	pair := artifact.Pair{Bundle: "assets/app.js", Map: "assets/app.map"}
	return &sourcemap.Result{
		Outcomes: []sourcemap.Outcome{
			{
				Task:    sourcemap.Task{Pair: pair, Destination: "https://a/", MinifiedURL: "https://a/assets/app.js"},
				State:   sourcemap.Succeeded,
				Elapsed: 20 * time.Millisecond,
			},
			{
				Task:  sourcemap.Task{Pair: pair, Destination: "https://b/", MinifiedURL: "https://b/assets/app.js"},
				State: sourcemap.Failed,
				Err:   errors.New("status 422"),
			},
		},
	}
}

func TestUploadSection(t *testing.T) {
	t.Setenv("GITLAB_CI", "")

	var buf bytes.Buffer
	UploadSection(&buf, sampleResult(), false, time.Second, false)
	out := buf.String()

	assert.Contains(t, out, "✓ https://a/assets/app.js")
	assert.Contains(t, out, "✗ https://b/assets/app.js")
	assert.Contains(t, out, "status 422")
	assert.Contains(t, out, "1 uploaded, 1 failed, 0 not completed")
}

func TestUploadSectionEmpty(t *testing.T) {
	t.Setenv("GITLAB_CI", "")

	var buf bytes.Buffer
	UploadSection(&buf, &sourcemap.Result{}, false, 0, false)
	assert.Contains(t, buf.String(), "nothing to upload")
}

func TestStepResult(t *testing.T) {
	var buf bytes.Buffer
	StepResult(&buf, "Deploy", nil, "production @ abc", time.Millisecond, false)
	StepResult(&buf, "Deploy", errors.New("boom"), "", time.Millisecond, false)

	out := buf.String()
	assert.Contains(t, out, "✓ production @ abc")
	assert.Contains(t, out, "✗ boom")
}

func TestWriteUploadJUnit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	require.NoError(t, WriteUploadJUnit(dir, sampleResult(), time.Second))

	data, err := os.ReadFile(filepath.Join(dir, "upload.xml"))
	require.NoError(t, err)

	var suites JUnitTestSuites
	require.NoError(t, xml.Unmarshal(data, &suites))
	assert.Equal(t, 2, suites.Tests)
	assert.Equal(t, 1, suites.Failures)
	require.Len(t, suites.Suites, 2)
	assert.Equal(t, "hbdeploy/upload/https://a/", suites.Suites[0].Name)
	assert.Nil(t, suites.Suites[0].Cases[0].Failure)
	require.NotNil(t, suites.Suites[1].Cases[0].Failure)
	assert.Equal(t, "status 422", suites.Suites[1].Cases[0].Failure.Body)
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "<1ms", formatElapsed(time.Microsecond))
	assert.Equal(t, "250ms", formatElapsed(250*time.Millisecond))
	assert.Equal(t, "1.5s", formatElapsed(1500*time.Millisecond))
	assert.Equal(t, "2m3.0s", formatElapsed(123*time.Second))
}
