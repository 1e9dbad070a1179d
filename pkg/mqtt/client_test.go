package mqtt

import "testing"

func TestTopicsMatch(t *testing.T) {
	tests := []struct {
		filter string
		topic  string
		want   bool
	}{
		{"veltrack/v1/position/ABC1234", "veltrack/v1/position/ABC1234", true},
		{"veltrack/v1/position/+", "veltrack/v1/position/ABC1234", true},
		{"veltrack/v1/position/+", "veltrack/v1/position/ABC1234/extra", false},
		{"veltrack/v1/#", "veltrack/v1/event/ABC1234", true},
		{"veltrack/v1/event/+", "veltrack/v1/position/ABC1234", false},
		{"veltrack/v1/position/+", "veltrack/v1/position", false},
	}

	for _, tt := range tests {
		if got := topicsMatch(tt.filter, tt.topic); got != tt.want {
			t.Errorf("topicsMatch(%q, %q) = %v, want %v", tt.filter, tt.topic, got, tt.want)
		}
	}
}

func TestTopicFilterStripsSharedGroup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"$share/engine/veltrack/v1/position/+", "veltrack/v1/position/+"},
		{"veltrack/v1/position/+", "veltrack/v1/position/+"},
	}

	for _, tt := range tests {
		if got := topicFilter(tt.in); got != tt.want {
			t.Errorf("topicFilter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
