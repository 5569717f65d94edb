// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"k8s.io/apimachinery/pkg/util/validation/field"

	shrinkv1 "github.com/elastic/timeseries-optimizer/pkg/apis/shrink/v1"
	esclient "github.com/elastic/timeseries-optimizer/pkg/elasticsearch/client"
	"github.com/elastic/timeseries-optimizer/pkg/shrink"
	ulog "github.com/elastic/timeseries-optimizer/pkg/utils/log"
)

// maxBodyBytes bounds the size of request bodies.
const maxBodyBytes = 1 << 20

// Controller runs shrink requests.
type Controller interface {
	Shrink(ctx context.Context, req *shrinkv1.ShrinkRequest) shrinkv1.Response[shrinkv1.ShrinkResponse]
	ShrinkByDate(ctx context.Context, req *shrinkv1.ShrinkByDateRequest) shrinkv1.Response[shrinkv1.ShrinkByDateResponse]
}

// ClusterInfoGetter reports whether the cluster answers.
type ClusterInfoGetter interface {
	GetClusterInfo(ctx context.Context) (esclient.Info, error)
}

type handlers struct {
	controller Controller
	cluster    ClusterInfoGetter
}

func (h *handlers) shrink(w http.ResponseWriter, r *http.Request) {
	var req *shrinkv1.ShrinkRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, shrinkv1.NewFailedResponse[shrinkv1.ShrinkResponse](nil, err))
		return
	}
	resp := h.controller.Shrink(r.Context(), req)
	writeJSON(r.Context(), w, statusCode(resp.Operation), resp)
}

func (h *handlers) shrinkByDate(w http.ResponseWriter, r *http.Request) {
	var req *shrinkv1.ShrinkByDateRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, shrinkv1.NewFailedResponse[shrinkv1.ShrinkByDateResponse](nil, err))
		return
	}
	resp := h.controller.ShrinkByDate(r.Context(), req)
	writeJSON(r.Context(), w, statusCode(resp.Operation), resp)
}

type status struct {
	Status         string `json:"status"`
	ClusterName    string `json:"clusterName,omitempty"`
	ClusterVersion string `json:"clusterVersion,omitempty"`
	Error          string `json:"error,omitempty"`
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, status{Status: "ok"})
}

func (h *handlers) readyz(w http.ResponseWriter, r *http.Request) {
	info, err := h.cluster.GetClusterInfo(r.Context())
	if err != nil {
		ulog.FromContext(r.Context()).Error(err, "Elasticsearch cluster is not reachable")
		writeJSON(r.Context(), w, http.StatusServiceUnavailable, status{Status: "unavailable", Error: err.Error()})
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, status{
		Status:         "ready",
		ClusterName:    info.ClusterName,
		ClusterVersion: info.Version.Number,
	})
}

// decodeBody decodes the JSON body of r into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return shrinkv1.NewValidationError(field.ErrorList{
			field.Invalid(field.NewPath("body"), "", "request body must be a JSON object: "+err.Error()),
		})
	}
	return nil
}

// statusCode maps the outcome of an operation to an HTTP status. Batches with failed days are still
// reported with 200, the body lists the failures.
func statusCode(op shrinkv1.Operation) int {
	if !op.Failed || op.Error == nil {
		return http.StatusOK
	}
	switch shrink.Kind(op.Error.Kind) {
	case shrink.ValidationError:
		return http.StatusBadRequest
	case shrink.IndexAbsent:
		return http.StatusNotFound
	case shrink.ClusterUnreachable, shrink.NoDataNodeAvailable:
		return http.StatusServiceUnavailable
	case shrink.RelocationTimeout:
		return http.StatusGatewayTimeout
	case shrink.Cancelled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ulog.FromContext(ctx).Error(err, "Failed to write response")
	}
}
