package broadcast

// Schedule modes for a new broadcast.
const (
	ScheduleNow   = "now"
	ScheduleLater = "later"
)

// DefaultRateLimit is the canonical messages-per-minute default, matching
// the WhatsApp Cloud API ceiling.
const (
	DefaultRateLimit = 1000
	MinRateLimit     = 1
	MaxRateLimit     = 1000
)

// FormState is an immutable snapshot of the new-broadcast form. Updates go
// through the With*/Toggle* methods, which return a new value; BuildRequest
// and Submit never mutate it. That keeps validation deterministic and
// testable without a UI harness.
type FormState struct {
	CampaignName string
	TemplateName string
	ContactIDs   []string
	Variables    map[string]string
	ScheduleMode string
	ScheduleDate string // YYYY-MM-DD
	ScheduleTime string // HH:MM
	RateLimit    int
}

// NewFormState returns an empty form ready for immediate sending.
func NewFormState() FormState {
	return FormState{
		ScheduleMode: ScheduleNow,
		RateLimit:    DefaultRateLimit,
	}
}

// WithName sets the campaign name.
func (s FormState) WithName(name string) FormState {
	s.CampaignName = name
	return s
}

// WithTemplate selects a template by name.
func (s FormState) WithTemplate(name string) FormState {
	s.TemplateName = name
	return s
}

// WithVariable binds one template variable. The bindings map is copied so
// the previous snapshot stays intact.
func (s FormState) WithVariable(name, value string) FormState {
	vars := make(map[string]string, len(s.Variables)+1)
	for k, v := range s.Variables {
		vars[k] = v
	}
	vars[name] = value
	s.Variables = vars
	return s
}

// ToggleContact flips one contact in or out of the recipient selection.
func (s FormState) ToggleContact(id string) FormState {
	next := make([]string, 0, len(s.ContactIDs)+1)
	found := false
	for _, existing := range s.ContactIDs {
		if existing == id {
			found = true
			continue
		}
		next = append(next, existing)
	}
	if !found {
		next = append(next, id)
	}
	s.ContactIDs = next
	return s
}

// SelectAll toggles the whole contact list: if everything is already
// selected the selection empties, otherwise it becomes all of the given IDs.
func (s FormState) SelectAll(ids []string) FormState {
	if len(s.ContactIDs) == len(ids) {
		s.ContactIDs = nil
		return s
	}
	s.ContactIDs = append([]string(nil), ids...)
	return s
}

// WithSchedule sets the schedule mode and, for deferred sends, the date and
// time fields.
func (s FormState) WithSchedule(mode, date, timeOfDay string) FormState {
	s.ScheduleMode = mode
	s.ScheduleDate = date
	s.ScheduleTime = timeOfDay
	return s
}

// WithRateLimit sets the per-minute send rate, clamped to [1, 1000].
// Non-positive input falls back to the default.
func (s FormState) WithRateLimit(perMinute int) FormState {
	s.RateLimit = NormalizeRateLimit(perMinute)
	return s
}

// NormalizeRateLimit clamps a rate limit to the supported range. Zero and
// negative values take the canonical default.
func NormalizeRateLimit(perMinute int) int {
	if perMinute <= 0 {
		return DefaultRateLimit
	}
	if perMinute < MinRateLimit {
		return MinRateLimit
	}
	if perMinute > MaxRateLimit {
		return MaxRateLimit
	}
	return perMinute
}
