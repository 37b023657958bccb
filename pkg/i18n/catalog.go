package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported locales, in matcher priority order. The first entry is the fallback.
var Supported = []language.Tag{
	language.English,
	language.SimplifiedChinese,
}

var translations = map[language.Tag]map[string]string{
	language.English: {
		KeyStateActive:           "Current selection",
		KeyState1:                "Online",
		KeyState0:                "Workflow is not online",
		KeyState10:               "Schedule is not online",
		KeyWorkflowName:          "Workflow name",
		KeyScheduleStartTime:     "Schedule start time",
		KeyScheduleEndTime:       "Schedule end time",
		KeyCrontab:               "Crontab expression",
		KeyWorkflowPublishStatus: "Workflow publish status",
		KeySchedulePublishStatus: "Schedule publish status",
	},
	language.SimplifiedChinese: {
		KeyStateActive:           "当前选择",
		KeyState1:                "已上线",
		KeyState0:                "工作流未上线",
		KeyState10:               "调度未上线",
		KeyWorkflowName:          "工作流名字",
		KeyScheduleStartTime:     "调度开始时间",
		KeyScheduleEndTime:       "调度结束时间",
		KeyCrontab:               "crontab表达式",
		KeyWorkflowPublishStatus: "工作流发布状态",
		KeySchedulePublishStatus: "调度发布状态",
	},
}

// Catalog holds the built-in translations.
type Catalog struct {
	builder *catalog.Builder
	matcher language.Matcher
}

// NewCatalog builds the catalog of built-in translations.
func NewCatalog() *Catalog {
	b := catalog.NewBuilder(catalog.Fallback(Supported[0]))
	for tag, msgs := range translations {
		for key, msg := range msgs {
			// Keys and messages are static; SetString only fails on malformed input.
			_ = b.SetString(tag, key, msg)
		}
	}
	return &Catalog{builder: b, matcher: language.NewMatcher(Supported)}
}

// Match returns the supported tag closest to locale. Empty or unparseable
// locales resolve to English.
func (c *Catalog) Match(locale string) language.Tag {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return Supported[0]
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return Supported[0]
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return Supported[0]
	}
	return Supported[idx]
}

// Localizer returns a Localizer for the given tag.
func (c *Catalog) Localizer(tag language.Tag) Localizer {
	return &printerLocalizer{p: message.NewPrinter(tag, message.Catalog(c.builder))}
}

// ForLocale matches locale and returns its Localizer.
func (c *Catalog) ForLocale(locale string) Localizer {
	return c.Localizer(c.Match(locale))
}

var defaultCatalog = NewCatalog()

// ForLocale resolves locale against the built-in catalog.
func ForLocale(locale string) Localizer {
	return defaultCatalog.ForLocale(locale)
}

// Default returns the English localizer.
func Default() Localizer {
	return defaultCatalog.Localizer(Supported[0])
}

// IsSupported reports whether locale matches one of the built-in translations
// with at least low confidence. The empty string is accepted and means English.
func IsSupported(locale string) bool {
	if strings.TrimSpace(locale) == "" {
		return true
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return false
	}
	_, _, conf := defaultCatalog.matcher.Match(tag)
	return conf != language.No
}

type printerLocalizer struct {
	p *message.Printer
}

func (l *printerLocalizer) Text(key string) string {
	return l.p.Sprintf(message.Key(key, key))
}

// Match resolves locale against the built-in catalog.
func Match(locale string) language.Tag {
	return defaultCatalog.Match(locale)
}
