package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/MedCausal/DiagPipe/internal/models"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Medical Diagnosis Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; line-height: 1.6; color: #333; }
        h1 { color: #2C3E50; border-bottom: 2px solid #3498DB; padding-bottom: 10px; }
        h2 { color: #3498DB; margin-top: 30px; border-bottom: 1px solid #ddd; padding-bottom: 5px; }
        .section { margin-bottom: 30px; }
        .highlight { background-color: #F8F9F9; padding: 15px; border-left: 5px solid #3498DB; margin: 20px 0; }
        .footer { margin-top: 50px; text-align: center; font-size: 12px; color: #777; }
    </style>
</head>
<body>
    <h1>Medical Diagnosis and Treatment Plan</h1>
    <p>Generated on: {{ .Date }}</p>

    <div class="section">
        <h2>Patient Case</h2>
        <p>{{ .CaseText }}</p>
    </div>

    <div class="section">
        <h2>Medical Factors</h2>
        {{ .ExtractedFactors }}
    </div>

    <div class="section">
        <h2>Causal Analysis</h2>
        {{ .CausalLinks }}
    </div>

    <div class="section">
        <h2>Diagnosis</h2>
        <div class="highlight">{{ .Diagnosis }}</div>
    </div>

    <div class="section">
        <h2>Treatment Plan</h2>
        {{ .TreatmentPlan }}
    </div>

    <div class="section">
        <h2>Patient-Specific Considerations</h2>
        {{ .PatientSpecificPlan }}
    </div>

    <div class="section">
        <h2>Final Treatment Recommendation</h2>
        <div class="highlight">{{ .FinalTreatmentPlan }}</div>
    </div>

    <div class="footer">
        <p>This report was generated using causal inference with LLMs. It is intended for informational purposes only and should be reviewed by a qualified medical professional.</p>
    </div>
</body>
</html>
`))

type reportData struct {
	Date                string
	CaseText            string
	ExtractedFactors    template.HTML
	CausalLinks         template.HTML
	Diagnosis           template.HTML
	TreatmentPlan       template.HTML
	PatientSpecificPlan template.HTML
	FinalTreatmentPlan  template.HTML
}

// stageText returns the recorded text for a stage or a placeholder.
func stageText(results map[models.Stage]models.StageResult, stage models.Stage, placeholder string) string {
	if res, ok := results[stage]; ok && res.Text != "" {
		return res.Text
	}
	return placeholder
}

// formatContent escapes stage text and converts newlines to line breaks for
// HTML display.
func formatContent(text string) template.HTML {
	escaped := template.HTMLEscapeString(text)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>\n"))
}

// RenderCaseReport renders the full HTML case report from the results store.
// Missing stages render placeholders; the report never fails on incomplete
// pipelines so partial runs can still be reviewed.
func RenderCaseReport(results map[models.Stage]models.StageResult) (string, error) {
	data := reportData{
		Date:                time.Now().Format("2006-01-02 15:04:05"),
		CaseText:            stageText(results, models.StageInitial, "No case text provided"),
		ExtractedFactors:    formatContent(stageText(results, models.StageExtraction, "No extracted factors available")),
		CausalLinks:         formatContent(stageText(results, models.StageCausalAnalysis, "No causal links available")),
		Diagnosis:           formatContent(stageText(results, models.StageDiagnosis, "No diagnosis available")),
		TreatmentPlan:       formatContent(stageText(results, models.StageTreatmentPlanning, "No treatment plan available")),
		PatientSpecificPlan: formatContent(stageText(results, models.StagePatientSpecific, "No patient-specific plan available")),
		FinalTreatmentPlan:  formatContent(stageText(results, models.StageFinalPlan, "No final treatment plan available")),
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render case report: %w", err)
	}
	return buf.String(), nil
}
