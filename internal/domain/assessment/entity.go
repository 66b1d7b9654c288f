package assessment

import (
	"encoding/json"
	"time"

	"github.com/bryanwahyu/cp-analyzer/internal/domain/analysis"
)

// Assessment is one reviewable inspection/cleaning report.
type Assessment struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	User        string `json:"user"`
	LastUpdated string `json:"lastUpdated"` // ISO-8601
}

// DocumentParsing carries vessel metadata extracted from the report.
type DocumentParsing struct {
	IMONo               string   `json:"imo_no"`
	VesselName          string   `json:"vessel_name"`
	EventType           []string `json:"event_type"`
	Parts               []string `json:"parts"`
	Date                string   `json:"date"`
	Port                string   `json:"port"`
	Vendor              string   `json:"vendor"`
	CleaningMethod      *string  `json:"cleaning_method"`
	InspectionEquipment *string  `json:"inspection_equipment"`
	ServiceSummary      string   `json:"service_summary"`
	ReportSummary       string   `json:"report_summary"`
}

// PartAssessment is one inspected part with its traffic-light verdict.
type PartAssessment struct {
	PartName         string `json:"part_name"`
	ProviderClaim    string `json:"provider_claim"`
	AgentObservation string `json:"agent_observation"`
	TrafficLight     string `json:"traffic_light"` // green | yellow | red
	Reasoning        string `json:"reasoning"`
	ImagePages       []int  `json:"image_pages"`
}

// ReportAssessment is the overall report verdict.
type ReportAssessment struct {
	AssessmentID        string           `json:"assessment_id"`
	VesselName          string           `json:"vessel_name"`
	AssessmentDate      string           `json:"assessment_date"`
	OverallSummary      string           `json:"overall_summary"`
	OverallTrafficLight string           `json:"overall_traffic_light"`
	TotalParts          int              `json:"total_parts,omitempty"`
	GreenCount          int              `json:"green_count,omitempty"`
	YellowCount         int              `json:"yellow_count,omitempty"`
	RedCount            int              `json:"red_count,omitempty"`
	PartAssessments     []PartAssessment `json:"part_assessments"`
	CriticalIssues      []string         `json:"critical_issues"`
	Notes               string           `json:"notes"`
}

// Data is the full analysis payload for one assessment. Risks and
// Conflicts stay raw until the analysis package validates their report
// shape and normalizes the items.
type Data struct {
	Assessment
	OCRResults      []json.RawMessage `json:"ocr_results"`
	DocumentParsing DocumentParsing   `json:"document_parsing"`
	Report          ReportAssessment  `json:"assessment"`
	Risks           json.RawMessage   `json:"risks,omitempty"`
	Conflicts       json.RawMessage   `json:"conflicts,omitempty"`
}

// Items returns the normalized findings: risks first, then conflicts.
func (d *Data) Items() []analysis.Item {
	risks := analysis.ItemsFromReport(d.ID, d.Risks, analysis.RiskReportKey)
	conflicts := analysis.ItemsFromReport(d.ID, d.Conflicts, analysis.ConflictReportKey)
	return append(risks, conflicts...)
}

// EmptyData is the placeholder payload for new or unreadable assessments.
func EmptyData(a Assessment) *Data {
	return &Data{
		Assessment: a,
		OCRResults: []json.RawMessage{},
		DocumentParsing: DocumentParsing{
			EventType: []string{},
			Parts:     []string{},
		},
		Report: ReportAssessment{
			AssessmentID:        a.ID,
			OverallTrafficLight: "green",
			PartAssessments:     []PartAssessment{},
			CriticalIssues:      []string{},
		},
	}
}

// NowISO formats a timestamp the way lastUpdated is stored.
func NowISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
