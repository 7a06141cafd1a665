package entity

import "strings"

// Profile is the user's flat personal-information record keyed by
// canonical field names (firstName, email, city, ...).
type Profile map[string]string

// Get returns the trimmed value for key, empty string when absent.
func (p Profile) Get(key string) string {
	return strings.TrimSpace(p[key])
}

// Resume is the user's resume text plus derived material.
type Resume struct {
	Raw        string
	Highlights []string
	Sections   map[string]string
}

// AgentContext bundles everything the planner knows about the user.
type AgentContext struct {
	Profile Profile
	Resume  Resume
	Job     *JobContext
}
