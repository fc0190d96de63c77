package sleepstudies

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusBooked, StatusDeviceDelivered, true},
		{StatusBooked, StatusCancelled, true},
		{StatusBooked, StatusStudyCompleted, false},
		{StatusDeviceDelivered, StatusStudyCompleted, true},
		{StatusStudyCompleted, StatusReportUploaded, true},
		{StatusReportUploaded, StatusRecommendationSent, true},
		{StatusReportUploaded, StatusCancelled, false},
		{StatusRecommendationSent, StatusCancelled, false},
		{StatusCancelled, StatusBooked, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.ok {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}
