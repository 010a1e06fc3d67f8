// Package ui provides styled CLI output for the tcab compiler using lipgloss
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dubya62/tcab/pkg/diag"
)

// Color palette
var (
	colorPrimary = lipgloss.Color("#F4A256") // Amber (tcab brand)
	colorSuccess = lipgloss.Color("#5AF78E") // Green
	colorWarning = lipgloss.Color("#F7DC6F") // Yellow
	colorError   = lipgloss.Color("#FF6B9D") // Pink/Red
	colorMuted   = lipgloss.Color("#6C7086") // Gray
	colorText    = lipgloss.Color("#CDD6F4") // Light text
	colorSubtle  = lipgloss.Color("#7F849C") // Subtle text
	colorBorder  = lipgloss.Color("#45475A") // Border
)

var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 2).
			MarginBottom(1)

	styleVersion = lipgloss.NewStyle().
			Foreground(colorSubtle).
			Italic(true)

	styleFileInput = lipgloss.NewStyle().
			Foreground(colorText)

	styleFileOutput = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	styleError = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	styleStepLabel = lipgloss.NewStyle().
			Foreground(colorText).
			Width(12).
			Align(lipgloss.Left)

	styleStepTime = lipgloss.NewStyle().
			Foreground(colorSubtle).
			Italic(true)

	styleSummary = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(colorBorder).
			MarginTop(1).
			PaddingTop(1)

	styleDiagHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorError)

	styleDiagSource = lipgloss.NewStyle().
			Foreground(colorText)

	styleDiagHint = lipgloss.NewStyle().
			Foreground(colorWarning)
)

// BuildOutput manages the build output display
type BuildOutput struct {
	startTime time.Time
	fileCount int
}

// NewBuildOutput creates a new build output manager
func NewBuildOutput() *BuildOutput {
	return &BuildOutput{startTime: time.Now()}
}

// PrintHeader prints the main tcab header
func (b *BuildOutput) PrintHeader(version string) {
	header := styleHeader.Render("tcab Compiler")
	versionBadge := styleVersion.Render("v" + version)
	fmt.Println(header + " " + versionBadge)
}

// PrintBuildStart prints the build start message
func (b *BuildOutput) PrintBuildStart(fileCount int) {
	b.fileCount = fileCount
	if fileCount == 1 {
		fmt.Println(styleMuted.Render("Building 1 file"))
	} else {
		fmt.Println(styleMuted.Render(fmt.Sprintf("Building %d files", fileCount)))
	}
	fmt.Println()
}

// PrintFileStart prints the file being processed
func (b *BuildOutput) PrintFileStart(inputPath, outputPath string) {
	input := styleFileInput.Render(inputPath)
	arrow := styleMuted.Render("→")
	output := styleFileOutput.Render(outputPath)
	fmt.Printf("  %s %s %s\n\n", input, arrow, output)
}

// Step represents a build step status
type Step struct {
	Name     string
	Status   StepStatus
	Duration time.Duration
	Message  string
}

// StepStatus represents the status of a build step
type StepStatus int

const (
	StepSuccess StepStatus = iota
	StepSkipped
	StepWarning
	StepError
)

// PrintStep prints a build step with status
func (b *BuildOutput) PrintStep(step Step) {
	var icon, status string
	switch step.Status {
	case StepSuccess:
		icon = "✓"
		status = styleSuccess.Render("Done")
	case StepSkipped:
		icon = "○"
		status = styleMuted.Render("Skipped")
	case StepWarning:
		icon = "⚠"
		status = styleWarning.Render("Warning")
	case StepError:
		icon = "✗"
		status = styleError.Render("Failed")
	}

	line := fmt.Sprintf("  %s %s%s", icon, styleStepLabel.Render(step.Name), status)
	if step.Duration > 0 {
		line += " " + styleStepTime.Render("("+FormatDuration(step.Duration)+")")
	}
	fmt.Println(line)

	if step.Message != "" {
		fmt.Println(styleMuted.Render("    " + step.Message))
	}
}

// PrintDiagnostic prints one diagnostic as its five-line block, styled.
func (b *BuildOutput) PrintDiagnostic(d diag.Diagnostic) {
	fmt.Println(styleDiagHeader.Render("  File: " + d.File))
	fmt.Println(styleDiagHeader.Render(
		fmt.Sprintf("  Error[%s] at line %d", d.Category, d.Line)))
	if d.Line > 0 && d.Source != "" {
		fmt.Println(styleDiagSource.Render(
			fmt.Sprintf("  %4d | %s", d.Line, strings.TrimRight(d.Source, "\n"))))
	} else {
		fmt.Println(styleMuted.Render("       | (source unavailable)"))
	}
	fmt.Println(styleDiagSource.Render("  Cause: " + d.Cause))
	fmt.Println(styleDiagHint.Render("  Suggestion: " + d.Suggestion))
	fmt.Println()
}

// PrintSummary prints the final build summary
func (b *BuildOutput) PrintSummary(success bool, errorMsg string) {
	elapsed := time.Since(b.startTime)
	fmt.Println()

	var summaryLine string
	if success {
		summaryLine = fmt.Sprintf("%s Built in %s",
			styleSuccess.Render("Success!"),
			styleStepTime.Render(FormatDuration(elapsed)))
	} else {
		summaryLine = styleError.Render("Build failed")
		if errorMsg != "" {
			summaryLine += "\n" + styleError.Render("   Error: ") + errorMsg
		}
	}
	fmt.Println(styleSummary.Render(summaryLine))
}

// PrintError prints an error message
func (b *BuildOutput) PrintError(msg string) {
	fmt.Println("  " + styleError.Render("✗ Error: ") + msg)
}

// PrintInfo prints an informational message
func (b *BuildOutput) PrintInfo(msg string) {
	fmt.Println("  " + styleMuted.Render(msg))
}

// FormatDuration renders a duration at the precision a build step needs.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
