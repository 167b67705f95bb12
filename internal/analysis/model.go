package analysis

import "time"

// Skill is a detected skill with a category and proficiency label.
type Skill struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Proficiency string `json:"proficiency"`
}

// Experience is a single work history entry.
type Experience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

// Education is a single education entry.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Year        string `json:"year"`
}

// ResumeAnalysis is the snapshot stored on a resume. It is replaced wholesale on re-analysis.
type ResumeAnalysis struct {
	Skills              []Skill      `json:"skills"`
	Experience          []Experience `json:"experience"`
	Education           []Education  `json:"education"`
	Summary             string       `json:"summary"`
	Strengths           []string     `json:"strengths"`
	AreasForImprovement []string     `json:"areasForImprovement"`
	OverallScore        int          `json:"overallScore"`
	AnalyzedAt          time.Time    `json:"analyzedAt"`
}
