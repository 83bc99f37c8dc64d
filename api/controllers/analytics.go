package controllers

import (
	"net/http"

	"github.com/hmartinez-dev/tiendita-backend/api/responses"
	"github.com/hmartinez-dev/tiendita-backend/api/validators"
	analyticsvc "github.com/hmartinez-dev/tiendita-backend/internal/analytics"
	pkgerrors "github.com/hmartinez-dev/tiendita-backend/pkg/errors"
	"github.com/hmartinez-dev/tiendita-backend/pkg/logger"
)

// RevenueSeries returns the dense revenue series for one timeframe.
func RevenueSeries(svc analyticsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		tf, err := queryTimeframe(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		series, err := svc.Revenue(r.Context(), tf)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, series)
	}
}

// TopProducts returns the best performers by profit for one timeframe.
func TopProducts(svc analyticsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		tf, err := queryTimeframe(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		top, err := svc.TopProducts(r.Context(), tf)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, top)
	}
}

func queryTimeframe(r *http.Request) (analyticsvc.Timeframe, error) {
	raw := validators.QueryString(r, "timeframe")
	if raw == "" {
		return analyticsvc.TimeframeDaily, nil
	}
	tf, err := analyticsvc.ParseTimeframe(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid timeframe").WithDetails(map[string]any{"field": "timeframe"})
	}
	return tf, nil
}
