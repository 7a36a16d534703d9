package model

import (
	"strconv"
	"strings"
	"time"
)

// Fallback labels used whenever a value is missing.
const (
	LabelUnknown        = "Unbekannt"
	LabelRoleOpen       = "Rolle offen"
	LabelStatusOpen     = "Status offen"
	LabelDateOpen       = "Datum offen"
	LabelLocationOpen   = "Ort offen"
	LabelUnassigned     = "Nicht zugewiesen"
	LabelMeetingDefault = "Termin"
	LabelTaskDefault    = "Aufgabe"
	LabelSeparator      = " — "
)

// DefaultPriority is shown when a task carries no usable priority.
const DefaultPriority = 3

var roleLabels = map[StakeholderRole]string{
	RoleConsultant: "Beratung",
	RoleDirector:   "Leitung",
	RoleTeamMember: "Teammitglied",
	RoleSponsor:    "Traeger",
	RoleExternal:   "Extern",
}

var taskStateLabels = map[TaskState]string{
	TaskOpen:       "Offen",
	TaskAssigned:   "Zugewiesen",
	TaskInProgress: "In Bearbeitung",
	TaskBlocked:    "Blockiert",
	TaskResolved:   "Erledigt",
}

// RoleLabel returns the display label of a stakeholder role. Unknown roles
// are shown verbatim.
func RoleLabel(role StakeholderRole) string {
	if role == "" {
		return LabelRoleOpen
	}
	if l, ok := roleLabels[role]; ok {
		return l
	}
	return string(role)
}

// TaskStateLabel returns the display label of a task state.
func TaskStateLabel(state TaskState) string {
	if state == "" {
		return LabelStatusOpen
	}
	if l, ok := taskStateLabels[state]; ok {
		return l
	}
	return string(state)
}

// FormatDateTime renders t as DD.MM.YYYY HH:MM in UTC.
func FormatDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return LabelDateOpen
	}
	return t.UTC().Format("02.01.2006 15:04")
}

// FullName joins first and last name, or returns "" when both are blank.
func FullName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// StakeholderLabel joins full name and role label with LabelSeparator; a nil
// stakeholder yields the unknown label.
func StakeholderLabel(s *TimelineGraphStakeholder) string {
	if s == nil {
		return LabelUnknown
	}
	name := FullName(s.FirstName, s.LastName)
	if name == "" {
		name = LabelUnknown
	}
	return name + LabelSeparator + RoleLabel(s.Role)
}

// NormalizePriority clamps a priority into 1..5. Absent values map to the
// default priority.
func NormalizePriority(p *int) int {
	if p == nil {
		return DefaultPriority
	}
	return clampPriority(*p)
}

func clampPriority(p int) int {
	switch {
	case p < 1:
		return 1
	case p > 5:
		return 5
	}
	return p
}

// PriorityLabel renders the normalized priority as P1..P5.
func PriorityLabel(p *int) string {
	return "P" + strconv.Itoa(NormalizePriority(p))
}

// ParseDueDate parses a YYYY-MM-DD due date. A full RFC 3339 timestamp is
// accepted as well and reduced to its UTC date.
func ParseDueDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d, true
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		u := ts.UTC()
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// FormatDueDate renders a due date as DD.MM.YYYY, or "" when it is missing
// or malformed.
func FormatDueDate(s string) string {
	d, ok := ParseDueDate(s)
	if !ok {
		return ""
	}
	return d.Format("02.01.2006")
}

// IsTaskOverdue reports whether a task's due date lies strictly before
// now's UTC calendar date. Resolved tasks are never overdue.
func IsTaskOverdue(dueDate string, state TaskState, now time.Time) bool {
	if state == TaskResolved {
		return false
	}
	due, ok := ParseDueDate(dueDate)
	if !ok {
		return false
	}
	n := now.UTC()
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(today)
}
