package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oleamind/terroir/predict"
)

func TestService_Enhance_ControlGroupReturnsRawUnchanged(t *testing.T) {
	svc := NewService(Config{ExperimentID: "exp", ABTrafficSplit: 0}, nil)
	raw := predict.Result{Primary: predict.PrimaryMetric{Value: 11.5}}

	out, err := svc.Enhance(context.Background(), predict.Input{UserID: "u1"}, raw)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestService_Enhance_TreatmentWithoutClientUsesHeuristic(t *testing.T) {
	svc := NewService(Config{ExperimentID: "exp", ABTrafficSplit: 1.0}, nil)
	raw := predict.Result{
		Primary: predict.PrimaryMetric{Value: 11.5},
		Info:    predict.ModelInfo{PredictorVersion: "produce-v1"},
	}

	out, err := svc.Enhance(context.Background(), predict.Input{UserID: "u1"}, raw)
	require.NoError(t, err)
	assert.Equal(t, "produce-v1+heuristic", out.Info.PredictorVersion)
}

func TestService_Enhance_TreatmentWithClientUsesModelResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ModelResponse{PredictedValue: 14.0, Confidence: 0.9})
	}))
	defer server.Close()

	svc := NewService(Config{ExperimentID: "exp", ABTrafficSplit: 1.0, APIURL: server.URL, ModelVersion: "v2"}, nil)
	raw := predict.Result{Primary: predict.PrimaryMetric{Value: 11.5}, Info: predict.ModelInfo{PredictorVersion: "produce-v1"}}

	out, err := svc.Enhance(context.Background(), predict.Input{UserID: "u1"}, raw)
	require.NoError(t, err)
	assert.Equal(t, 14.0, out.Primary.Value)
	assert.Equal(t, 0.9, out.Confidence)
	assert.Equal(t, "produce-v1+ml:v2", out.Info.PredictorVersion)
}

func TestService_Enhance_TreatmentWithFailingClientFallsBackToRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewService(Config{ExperimentID: "exp", ABTrafficSplit: 1.0, APIURL: server.URL}, nil)
	raw := predict.Result{Primary: predict.PrimaryMetric{Value: 11.5}, Info: predict.ModelInfo{PredictorVersion: "produce-v1"}}

	out, err := svc.Enhance(context.Background(), predict.Input{UserID: "u1"}, raw)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestService_Experiments_RecordsOutcomesByGroup(t *testing.T) {
	svc := NewService(Config{ExperimentID: "exp", ABTrafficSplit: 0}, nil)
	_, err := svc.Enhance(context.Background(), predict.Input{UserID: "u1"}, predict.Result{Primary: predict.PrimaryMetric{Value: 10}})
	require.NoError(t, err)

	res := svc.Experiments().Result("exp")
	assert.Equal(t, 1, res.ControlCount)
}
