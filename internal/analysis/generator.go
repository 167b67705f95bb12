// Package analysis produces the simulated resume analysis.
//
// The output depends only on the uploaded file name: the score is
// 65 + (sum of character codes mod 31), and skill picks come from a PRNG
// seeded with the same sum, so identical names yield identical analyses
// apart from AnalyzedAt.
package analysis

import (
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf16"

	"jobtracker-backend/internal/shared/metrics"
)

const (
	baseScore   = 65
	scoreSpread = 31
	maxSkills   = 4
)

var skillPool = []Skill{
	{Name: "TypeScript", Category: "Technical", Proficiency: "Advanced"},
	{Name: "React", Category: "Technical", Proficiency: "Advanced"},
	{Name: "Node.js", Category: "Technical", Proficiency: "Intermediate"},
	{Name: "REST APIs", Category: "Technical", Proficiency: "Intermediate"},
	{Name: "Problem Solving", Category: "Soft", Proficiency: "Advanced"},
	{Name: "Communication", Category: "Soft", Proficiency: "Intermediate"},
	{Name: "Leadership", Category: "Soft", Proficiency: "Intermediate"},
}

// SkillPool returns a copy of the ordered pool skills are drawn from.
func SkillPool() []Skill {
	return append([]Skill(nil), skillPool...)
}

// Generator builds analyses. The zero value uses time.Now.
type Generator struct {
	Now func() time.Time
}

// NewGenerator returns a Generator using the wall clock.
func NewGenerator() *Generator {
	return &Generator{Now: time.Now}
}

// Seed returns the sum of the UTF-16 code units of fileName, so characters
// outside the BMP count as their surrogate pair.
func Seed(fileName string) int {
	sum := 0
	for _, u := range utf16.Encode([]rune(fileName)) {
		sum += int(u)
	}
	return sum
}

// Score returns the overall score for fileName, always within [65, 95].
func Score(fileName string) int {
	return baseScore + Seed(fileName)%scoreSpread
}

// Analyze returns the analysis for an uploaded file.
func (g *Generator) Analyze(fileName string) ResumeAnalysis {
	start := time.Now()
	defer func() {
		metrics.IncResumesAnalyzed()
		metrics.ObserveAnalysisDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	seed := Seed(fileName)
	return ResumeAnalysis{
		Skills: pickSkills(seed),
		Experience: []Experience{
			{
				Company:     "Sample Company",
				Position:    "Software Engineer",
				Duration:    "2 years",
				Description: "Built and maintained web applications with a focus on performance and reliability.",
			},
		},
		Education: []Education{
			{
				Institution: "Sample University",
				Degree:      "Bachelor of Technology",
				Field:       "Computer Science",
				Year:        "2023",
			},
		},
		Summary: baseName(fileName) + " demonstrates relevant technical fundamentals and practical project experience.",
		Strengths: []string{
			"Clear role progression",
			"Skills align with common product engineering roles",
			"Strong technical stack coverage",
		},
		AreasForImprovement: []string{
			"Add quantified impact metrics in experience bullets",
			"Include notable projects with measurable outcomes",
			"Refine summary for target job role keywords",
		},
		OverallScore: baseScore + seed%scoreSpread,
		AnalyzedAt:   g.now().UTC(),
	}
}

func (g *Generator) now() time.Time {
	if g == nil || g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

// pickSkills walks the pool at (seed + r) mod len(pool) until maxSkills distinct
// entries are chosen or the pool is exhausted.
func pickSkills(seed int) []Skill {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	n := len(skillPool)
	used := make(map[int]struct{}, n)
	picked := make([]Skill, 0, maxSkills)
	for len(picked) < maxSkills && len(used) < n {
		idx := (seed + rng.IntN(n)) % n
		if _, ok := used[idx]; ok {
			continue
		}
		used[idx] = struct{}{}
		picked = append(picked, skillPool[idx])
	}
	return picked
}

func baseName(fileName string) string {
	base := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	ext := filepath.Ext(base)
	if ext == base {
		return base
	}
	return strings.TrimSuffix(base, ext)
}
