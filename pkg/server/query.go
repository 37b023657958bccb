package server

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/pipeline"
)

var validate = validator.New()

// lineageQuery is the raw query string of the lineage endpoints. Shape is
// checked here; workflow ids and locales are validated by the pipeline.
type lineageQuery struct {
	IDs     string `validate:"required,max=32768"`
	Focus   string `validate:"omitempty,max=64"`
	Labels  string `validate:"omitempty,boolean"`
	Locale  string `validate:"omitempty,max=35"`
	Refresh string `validate:"omitempty,boolean"`
}

type searchQuery struct {
	Search string `validate:"max=256"`
}

func parseLineageQuery(project string, q url.Values) (pipeline.Options, error) {
	lq := lineageQuery{
		IDs:     q.Get("ids"),
		Focus:   q.Get("focus"),
		Labels:  q.Get("labels"),
		Locale:  q.Get("locale"),
		Refresh: q.Get("refresh"),
	}
	if err := validate.Struct(lq); err != nil {
		return pipeline.Options{}, queryError(err)
	}
	labels, _ := strconv.ParseBool(lq.Labels)
	refresh, _ := strconv.ParseBool(lq.Refresh)
	return pipeline.Options{
		Project:    project,
		IDs:        pipeline.ParseIDs(lq.IDs),
		Focus:      lq.Focus,
		ShowLabels: labels,
		Locale:     lq.Locale,
		Refresh:    refresh,
	}, nil
}

func parseSearchQuery(q url.Values) (string, error) {
	sq := searchQuery{Search: q.Get("search")}
	if err := validate.Struct(sq); err != nil {
		return "", queryError(err)
	}
	return sq.Search, nil
}

// queryError reports the first failing field as an INVALID_INPUT error.
func queryError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "invalid query")
	}
	e := verrs[0]
	field := queryName(e.Field())
	var msg string
	switch e.Tag() {
	case "required":
		msg = fmt.Sprintf("%s: parameter is required", field)
	case "max":
		msg = fmt.Sprintf("%s: must not exceed %s characters", field, e.Param())
	case "boolean":
		msg = fmt.Sprintf("%s: must be true or false", field)
	default:
		msg = fmt.Sprintf("%s: validation failed (%s)", field, e.Tag())
	}
	return kerrors.New(kerrors.ErrCodeInvalidInput, "%s", msg)
}

func queryName(field string) string {
	switch field {
	case "IDs":
		return "ids"
	case "Focus":
		return "focus"
	case "Labels":
		return "labels"
	case "Locale":
		return "locale"
	case "Refresh":
		return "refresh"
	case "Search":
		return "search"
	}
	return field
}
