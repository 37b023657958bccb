// Package i18n resolves the display strings used by lineage renderers.
//
// Renderers never look strings up from global state. They receive a [Localizer]
// and ask it for a fixed set of message keys ([KeyStateActive] and friends). The
// package ships a [Catalog] backed by golang.org/x/text with English and
// Simplified Chinese translations, plus [Map] and [Func] adapters for callers
// that bring their own strings.
package i18n

// Message keys. The category keys match the tokens used by the scheduler UI.
const (
	KeyStateActive = "KinshipStateActive" // focus workflow
	KeyState1      = "KinshipState1"      // published and scheduled
	KeyState0      = "KinshipState0"      // workflow not online
	KeyState10     = "KinshipState10"     // workflow online, schedule not online

	KeyWorkflowName          = "KinshipWorkflowName"
	KeyScheduleStartTime     = "KinshipScheduleStartTime"
	KeyScheduleEndTime       = "KinshipScheduleEndTime"
	KeyCrontab               = "KinshipCrontab"
	KeyWorkflowPublishStatus = "KinshipWorkflowPublishStatus"
	KeySchedulePublishStatus = "KinshipSchedulePublishStatus"
)

// Keys lists every message key a renderer may request.
var Keys = []string{
	KeyStateActive, KeyState1, KeyState0, KeyState10,
	KeyWorkflowName, KeyScheduleStartTime, KeyScheduleEndTime,
	KeyCrontab, KeyWorkflowPublishStatus, KeySchedulePublishStatus,
}

// Localizer returns the display string for a message key.
// Implementations must be safe for concurrent use and return the key itself
// when no translation exists.
type Localizer interface {
	Text(key string) string
}

// Func adapts a plain function to [Localizer].
type Func func(key string) string

// Text calls f.
func (f Func) Text(key string) string { return f(key) }

// Map is a pre-resolved set of strings. Missing keys resolve to themselves.
type Map map[string]string

// Text returns m[key], or key when absent.
func (m Map) Text(key string) string {
	if s, ok := m[key]; ok {
		return s
	}
	return key
}

// Resolve snapshots every key in [Keys] from l into a Map.
func Resolve(l Localizer) Map {
	out := make(Map, len(Keys))
	for _, k := range Keys {
		out[k] = l.Text(k)
	}
	return out
}
