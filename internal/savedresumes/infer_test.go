package savedresumes

import "testing"

func TestInferJobDetails(t *testing.T) {
	tests := []struct {
		name        string
		description string
		company     string
		title       string
	}{
		{
			name:        "labels",
			description: "Company: Phoenix Support Services\nPosition: Support Engineer\nWe help customers.",
			company:     "Phoenix Support Services",
			title:       "Support Engineer",
		},
		{
			name:        "hiring phrase and keyword",
			description: "Acme Robotics is hiring!\nSenior Backend Developer\nYou will build APIs.",
			company:     "Acme Robotics",
			title:       "Senior Backend Developer",
		},
		{
			name:        "join phrase",
			description: "Come join Initech and help us ship.",
			company:     "Initech",
		},
		{
			name:        "nothing to find",
			description: "we value kindness",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			company, title := InferJobDetails(tt.description)
			if company != tt.company {
				t.Fatalf("company = %q, want %q", company, tt.company)
			}
			if title != tt.title {
				t.Fatalf("title = %q, want %q", title, tt.title)
			}
		})
	}
}
