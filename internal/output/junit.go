package output

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/leonardomso/gfmlink/internal/batch"
	"github.com/leonardomso/gfmlink/internal/helpers"
)

// JUnitFormatter formats reports as JUnit XML for CI/CD integration.
// Every converted file is a test case; files that normalizing would
// rewrite fail and files that could not be read are errors.
type JUnitFormatter struct{}

// junitTestSuites is the root element for JUnit XML.
type junitTestSuites struct {
	XMLName   xml.Name         `xml:"testsuites"`
	Name      string           `xml:"name,attr"`
	Tests     int              `xml:"tests,attr"`
	Failures  int              `xml:"failures,attr"`
	Errors    int              `xml:"errors,attr"`
	TestSuite []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	TestCases []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Failure   *junitProblem `xml:"failure,omitempty"`
	Error     *junitProblem `xml:"error,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

type junitProblem struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// Format implements Formatter.
func (*JUnitFormatter) Format(report *Report) ([]byte, error) {
	suite := junitTestSuite{Name: "normalize"}

	for _, r := range report.Results {
		suite.Tests++

		tc := junitTestCase{
			Name:      r.Path,
			ClassName: "gfmlink.normalize",
		}

		switch r.Status {
		case batch.StatusFailed:
			suite.Errors++
			tc.Error = &junitProblem{
				Message: helpers.TruncateText(r.Error, 200),
				Type:    "error",
				Content: r.Error,
			}
		case batch.StatusChanged:
			suite.Failures++
			tc.Failure = &junitProblem{
				Message: "file is not normalized",
				Type:    "not-normalized",
				Content: buildFailureContent(r),
			}
		default:
			if len(r.Missing) > 0 {
				tc.SystemOut = missingContent(r)
			}
		}

		suite.TestCases = append(suite.TestCases, tc)
	}

	suites := junitTestSuites{
		Name:      "gfmlink",
		Tests:     suite.Tests,
		Failures:  suite.Failures,
		Errors:    suite.Errors,
		TestSuite: []junitTestSuite{suite},
	}

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), data...), nil
}

// buildFailureContent describes what the rewrite of a file touches.
func buildFailureContent(r batch.Result) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Links: %d\n", len(r.Links)))
	if r.Definitions > 0 {
		b.WriteString(fmt.Sprintf("Definitions removed: %d\n", r.Definitions))
	}
	b.WriteString(missingContent(r))
	return b.String()
}

func missingContent(r batch.Result) string {
	var b strings.Builder
	for _, m := range r.Missing {
		b.WriteString(fmt.Sprintf("Undefined reference %q at line %d\n", m.Label, m.Line+1))
	}
	return b.String()
}
