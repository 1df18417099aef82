package voice

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/eldrid/munin/internal/annotate"
)

func TestDetectType_Ladder(t *testing.T) {
	cases := []struct {
		transcript string
		want       MemoryType
	}{
		// "call" matches before the generic meeting check.
		{"Had a call with Jane about pricing", TypeCall},
		{"Meeting with Jane about pricing", TypeMeeting},
		{"Discussed with the board, went well", TypeMeeting},
		{"Spoke to Marcus at length", TypeCall},
		{"Remember to renew the certificates", TypeReminder},
		{"What if we bundled the sensors", TypeIdea},
		{"Just writing down some thoughts", TypeNote},
	}
	for _, tc := range cases {
		if got := DetectType(tc.transcript); got != tc.want {
			t.Errorf("DetectType(%q) = %q, want %q", tc.transcript, got, tc.want)
		}
	}
}

func TestExtractContacts_PatternsAndStoplist(t *testing.T) {
	got := ExtractContacts("Met Sarah Jones earlier. Marcus said the demo went fine. We sync with Tomorrow planning.")
	if len(got) != 2 || got[0] != "Sarah Jones" || got[1] != "Marcus" {
		t.Errorf("contacts = %v, want [Sarah Jones Marcus]", got)
	}
}

func TestExtractActionItems_GlobalDueDateQuirk(t *testing.T) {
	// The due date is scanned transcript-wide, so both items inherit
	// "tomorrow" even though only the first clause mentions it.
	items := ExtractActionItems("We need to ship the firmware tomorrow. Also must update the docs.")
	if len(items) != 2 {
		t.Fatalf("items = %v, want 2", items)
	}
	for _, it := range items {
		if it.DueDate != "tomorrow" {
			t.Errorf("item %+v: due = %q, want tomorrow (global assignment)", it, it.DueDate)
		}
	}
	if items[0].Text != "ship the firmware tomorrow" {
		t.Errorf("items[0].Text = %q", items[0].Text)
	}
}

func TestExtractActionItems_Assignee(t *testing.T) {
	items := ExtractActionItems("Follow up with Sarah to review the budget")
	if len(items) != 1 {
		t.Fatalf("items = %v, want 1", items)
	}
	if items[0].Assignee != "Sarah" || items[0].Text != "review the budget" {
		t.Errorf("item = %+v", items[0])
	}
}

func TestExtractActionItems_CommunicationVerbs(t *testing.T) {
	items := ExtractActionItems("Call the vendor about pricing.")
	if len(items) != 1 {
		t.Fatalf("items = %+v, want 1", items)
	}
	if items[0].Text != "the vendor about pricing" {
		t.Errorf("text = %q", items[0].Text)
	}
}

func TestExtractKeyPoints_ImportanceKeywords(t *testing.T) {
	transcript := "We talked for a while. The budget was approved at fifty thousand. Weather was nice. They agreed to the timeline."
	points := ExtractKeyPoints(transcript)
	if len(points) != 2 {
		t.Fatalf("points = %v, want 2", points)
	}
	if !strings.Contains(points[0], "budget") || !strings.Contains(points[1], "agreed") {
		t.Errorf("points = %v", points)
	}
}

func TestExtractKeyPoints_FallbackFirstThree(t *testing.T) {
	transcript := "First sentence here. Tiny one. Second real sentence. Third real sentence. Fourth real sentence."
	points := ExtractKeyPoints(transcript)
	if len(points) != 3 {
		t.Fatalf("points = %v, want 3", points)
	}
	if points[0] != "First sentence here" {
		t.Errorf("points[0] = %q", points[0])
	}
}

func TestStructure_MeetingTitleAndAttendees(t *testing.T) {
	m := Structure("Meeting with Sarah Jones about the rollout plan. We agreed on phases.")
	if m.Type != TypeMeeting {
		t.Fatalf("type = %q", m.Type)
	}
	if m.Title != "Meeting with Sarah Jones about the rollout plan" {
		t.Errorf("title = %q", m.Title)
	}
	if len(m.Attendees) != 1 || m.Attendees[0] != "Sarah Jones" {
		t.Errorf("attendees = %v", m.Attendees)
	}
}

func TestStructure_MeetingTopicAfterOn(t *testing.T) {
	m := Structure("Meeting on the Q3 budget. We walked through the line items.")
	if m.Type != TypeMeeting {
		t.Fatalf("type = %q", m.Type)
	}
	if m.Title != "Meeting notes about the Q3 budget" {
		t.Errorf("title = %q", m.Title)
	}
}

func TestStructure_ReminderTitle(t *testing.T) {
	m := Structure("Remember to renew the TLS certificates")
	if m.Type != TypeReminder {
		t.Fatalf("type = %q", m.Type)
	}
	if m.Title != "Reminder: renew the TLS certificates" {
		t.Errorf("title = %q", m.Title)
	}
}

func TestStructure_SummaryCapped(t *testing.T) {
	long := strings.Repeat("word ", 60) + ". " + strings.Repeat("more ", 60) + "."
	m := Structure(long)
	if len(m.Summary) > maxSummaryLen {
		t.Errorf("summary length = %d, want <= %d", len(m.Summary), maxSummaryLen)
	}
	if !strings.HasSuffix(m.Summary, "...") {
		t.Errorf("summary %q not ellipsized", m.Summary)
	}
	if m.RawTranscript != long {
		t.Error("raw transcript not retained verbatim")
	}
}

func TestStructure_MultibyteSummaryCap(t *testing.T) {
	long := strings.Repeat("é", 150)
	m := Structure(long + ". " + long + ".")
	if !utf8.ValidString(m.Summary) {
		t.Errorf("summary is not valid UTF-8: %q", m.Summary)
	}
	if !strings.HasSuffix(m.Summary, "...") {
		t.Errorf("summary %q not ellipsized", m.Summary)
	}
	if got := utf8.RuneCountInString(m.Summary); got != maxSummaryLen {
		t.Errorf("summary runes = %d, want %d", got, maxSummaryLen)
	}
}

func TestStructure_IdeaTitleMultibyteTruncation(t *testing.T) {
	m := Structure("What if " + strings.Repeat("ö", 80))
	want := "Idea: " + strings.Repeat("ö", 60)
	if m.Title != want {
		t.Errorf("title = %q, want %q", m.Title, want)
	}
}

func TestToMarkdown_RoundTripsThroughParser(t *testing.T) {
	m := Structure("Meeting with Sarah Jones about the sensor contract. We need to send the proposal tomorrow.")
	md := ToMarkdown(m, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC))

	res := annotate.Parse(md)
	if len(res.Contacts) == 0 || res.Contacts[0] != "Sarah Jones" {
		t.Errorf("parsed contacts = %v", res.Contacts)
	}
	if len(res.Tags) == 0 {
		t.Errorf("parsed tags = %v from:\n%s", res.Tags, md)
	}
	items := annotate.ExtractActionItems(md)
	if len(items) == 0 {
		t.Errorf("no action items parsed back from:\n%s", md)
	}
	if !strings.Contains(md, "<details>") || !strings.Contains(md, m.RawTranscript) {
		t.Error("raw transcript section missing")
	}
}
