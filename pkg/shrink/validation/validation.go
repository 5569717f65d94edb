// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package validation checks shrink requests before any call to the cluster.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/utils/clock"

	shrinkv1 "github.com/elastic/timeseries-optimizer/pkg/apis/shrink/v1"
)

var (
	bodyPath        = field.NewPath("body")
	indexNamePath   = field.NewPath("indexName")
	indexPrefixPath = field.NewPath("indexPrefix")
	startDatePath   = field.NewPath("startDate")
	endDatePath     = field.NewPath("endDate")
)

// DateRange is a validated range of past calendar days, in UTC.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ValidateShrinkRequest checks that the request names an index.
func ValidateShrinkRequest(req *shrinkv1.ShrinkRequest) field.ErrorList {
	if req == nil {
		return field.ErrorList{field.Required(bodyPath, "request body must be provided")}
	}
	if isBlank(req.IndexName) {
		return field.ErrorList{field.Required(indexNamePath, "index name must not be blank")}
	}
	return nil
}

// ValidateShrinkByDateRequest checks the request and parses its dates. Checks run in stages: missing values,
// then date formats, then the range itself. A stage only runs if the previous ones passed.
// Both dates must be strictly before the current UTC day, as indices of today may still be written to.
func ValidateShrinkByDateRequest(req *shrinkv1.ShrinkByDateRequest, clk clock.PassiveClock) (DateRange, field.ErrorList) {
	if req == nil {
		return DateRange{}, field.ErrorList{field.Required(bodyPath, "request body must be provided")}
	}

	var errs field.ErrorList
	if isBlank(req.IndexPrefix) {
		errs = append(errs, field.Required(indexPrefixPath, "index prefix must not be blank"))
	}
	if isBlank(req.StartDate) {
		errs = append(errs, field.Required(startDatePath, "start date must not be blank"))
	}
	if isBlank(req.EndDate) {
		errs = append(errs, field.Required(endDatePath, "end date must not be blank"))
	}
	if len(errs) > 0 {
		return DateRange{}, errs
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		errs = append(errs, field.Invalid(startDatePath, req.StartDate, err.Error()))
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		errs = append(errs, field.Invalid(endDatePath, req.EndDate, err.Error()))
	}
	if len(errs) > 0 {
		return DateRange{}, errs
	}

	today := Today(clk)
	if !start.Before(today) {
		errs = append(errs, field.Invalid(startDatePath, req.StartDate, "must be at least one day in the past"))
	}
	if !end.Before(today) {
		errs = append(errs, field.Invalid(endDatePath, req.EndDate, "must be at least one day in the past"))
	}
	if end.Before(start) {
		errs = append(errs, field.Invalid(endDatePath, req.EndDate, fmt.Sprintf("must not be before %s %s", startDatePath, req.StartDate)))
	}
	if len(errs) > 0 {
		return DateRange{}, errs
	}
	return DateRange{Start: start, End: end}, nil
}

// Today returns the start of the current UTC day.
func Today(clk clock.PassiveClock) time.Time {
	now := clk.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func parseDate(value string) (time.Time, error) {
	date, err := time.ParseInLocation(shrinkv1.DateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, errors.New("must be a valid date formatted as yyyy-MM-dd")
	}
	return date, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
