package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sofmeright/hbdeploy/src/sourcemap"
)

// CI environment detection.

func IsCI() bool {
	return os.Getenv("CI") == "true"
}

func IsGitLabCI() bool {
	return os.Getenv("GITLAB_CI") == "true"
}

// GitLab collapsible section helpers.

func SectionStart(w io.Writer, id, name string) {
	if !IsGitLabCI() {
		return
	}
	ts := time.Now().Unix()
	fmt.Fprintf(w, "\033[0Ksection_start:%d:%s\r\033[0K%s\n", ts, id, name)
}

func SectionEnd(w io.Writer, id string) {
	if !IsGitLabCI() {
		return
	}
	ts := time.Now().Unix()
	fmt.Fprintf(w, "\033[0Ksection_end:%d:%s\r\033[0K\n", ts, id)
}

// JUnit XML types for CI test reporting.

type JUnitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Name     string           `xml:"name,attr"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Time     string           `xml:"time,attr"`
	Suites   []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Time     string          `xml:"time,attr"`
	Cases    []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *struct{}     `xml:"skipped,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// WriteUploadJUnit writes upload outcomes as JUnit XML. Each destination
// becomes a test suite and each bundle uploaded to it a test case.
func WriteUploadJUnit(dir string, result *sourcemap.Result, elapsed time.Duration) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}

	var order []string
	byDest := make(map[string][]sourcemap.Outcome)
	for _, o := range result.Outcomes {
		if _, ok := byDest[o.Task.Destination]; !ok {
			order = append(order, o.Task.Destination)
		}
		byDest[o.Task.Destination] = append(byDest[o.Task.Destination], o)
	}

	root := JUnitTestSuites{
		Name: "hbdeploy-upload",
		Time: fmt.Sprintf("%.3f", elapsed.Seconds()),
	}

	for _, dest := range order {
		suite := JUnitTestSuite{Name: "hbdeploy/upload/" + dest}
		var suiteTime time.Duration

		for _, o := range byDest[dest] {
			tc := JUnitTestCase{
				Name:      o.Task.Pair.Bundle,
				Classname: "hbdeploy.upload",
				Time:      fmt.Sprintf("%.3f", o.Elapsed.Seconds()),
			}
			switch o.State {
			case sourcemap.Failed:
				msg := "upload failed"
				if o.Err != nil {
					msg = o.Err.Error()
				}
				tc.Failure = &JUnitFailure{
					Message: fmt.Sprintf("%s → %s", o.Task.Pair.Bundle, o.Task.MinifiedURL),
					Type:    o.State.String(),
					Body:    msg,
				}
				suite.Failures++
				root.Failures++
			case sourcemap.Pending, sourcemap.InFlight:
				tc.Skipped = &struct{}{}
			}
			suiteTime += o.Elapsed
			suite.Cases = append(suite.Cases, tc)
			suite.Tests++
			root.Tests++
		}

		suite.Time = fmt.Sprintf("%.3f", suiteTime.Seconds())
		root.Suites = append(root.Suites, suite)
	}

	path := filepath.Join(dir, "upload.xml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	f.WriteString(xml.Header)
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encoding junit xml: %w", err)
	}
	f.WriteString("\n")

	return nil
}

// CIHeader prints a compact pipeline context block at the start of a CI run.
func CIHeader(w io.Writer) {
	if !IsCI() {
		return
	}
	parts := []string{}
	if tag := os.Getenv("CI_COMMIT_TAG"); tag != "" {
		parts = append(parts, fmt.Sprintf("tag=%s", tag))
	}
	if sha := os.Getenv("CI_COMMIT_SHORT_SHA"); sha != "" {
		parts = append(parts, fmt.Sprintf("sha=%s", sha))
	} else if sha := os.Getenv("CI_COMMIT_SHA"); sha != "" && len(sha) >= 8 {
		parts = append(parts, fmt.Sprintf("sha=%s", sha[:8]))
	} else if sha := os.Getenv("GITHUB_SHA"); sha != "" && len(sha) >= 8 {
		parts = append(parts, fmt.Sprintf("sha=%s", sha[:8]))
	}
	if pipe := os.Getenv("CI_PIPELINE_ID"); pipe != "" {
		parts = append(parts, fmt.Sprintf("pipeline=%s", pipe))
	} else if run := os.Getenv("GITHUB_RUN_ID"); run != "" {
		parts = append(parts, fmt.Sprintf("run=%s", run))
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, "  ci: %s\n", strings.Join(parts, "  "))
	}
}
