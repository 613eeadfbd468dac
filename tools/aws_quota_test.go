package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/awsq/awsq/tools"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeQuotas maps "serviceCode/quotaCode" to a canned value or error.
type fakeQuotas struct {
	values map[string]struct {
		value float64
		unit  string
	}
	errs  map[string]error
	calls []string
}

func (f *fakeQuotas) GetServiceQuota(_ context.Context, serviceCode, quotaCode string) (float64, string, error) {
	key := serviceCode + "/" + quotaCode
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return 0, "", err
	}
	if v, ok := f.values[key]; ok {
		return v.value, v.unit, nil
	}
	return 0, "", errors.New("no such quota")
}

func quotaToolResult(t *testing.T, q tools.QuotaFetcher, input string) tools.Result {
	t.Helper()
	def := tools.NewQuotaTool(q, discard)
	return def.Function(context.Background(), json.RawMessage(input))
}

func TestFormatQuotaValue(t *testing.T) {
	cases := []struct {
		value float64
		unit  string
		want  string
	}{
		{512, "Megabytes", "512 MB"},
		{3.0, "Count", "3"},
		{250, "Milliseconds", "250 ms"},
		{2, "Gigabytes", "2 GB"},
		{1, "Terabytes", "1 TB"},
		{64, "Kilobytes", "64 KB"},
		{10, "Bytes", "10 B"},
		{1000, "None", "1000"},
		{6.5, "Unrecognized", "6.5"},
	}
	for _, tc := range cases {
		if got := tools.FormatQuotaValue(tc.value, tc.unit); got != tc.want {
			t.Errorf("FormatQuotaValue(%v, %q) = %q, want %q", tc.value, tc.unit, got, tc.want)
		}
	}
}

func TestNormalizeServiceName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Lambda", "lambda"},
		{"  DynamoDB ", "dynamodb"},
		{"api gateway", "api-gateway"},
		{"apigateway", "api-gateway"},
		{"api_gateway", "api-gateway"},
		{"API Gateway", "api-gateway"},
		{"s3", "s3"},
	}
	for _, tc := range cases {
		if got := tools.NormalizeServiceName(tc.in); got != tc.want {
			t.Errorf("NormalizeServiceName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestQuotaTool_Success(t *testing.T) {
	fq := &fakeQuotas{values: map[string]struct {
		value float64
		unit  string
	}{
		"lambda/L-B99A9384": {1000, "Count"},
		"lambda/L-2ACBD22F": {75, "Gigabytes"},
	}}
	res := quotaToolResult(t, fq, `{"service_name":"Lambda"}`)
	if res.IsError() {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	data, ok := res.Data.(tools.QuotaLookupData)
	if !ok {
		t.Fatalf("unexpected data type %T", res.Data)
	}
	if data.Service != "lambda" || len(data.Quotas) != 2 {
		t.Fatalf("unexpected data: %+v", data)
	}
	if data.Quotas[0].Value != "1000" {
		t.Errorf("concurrency value: got %q", data.Quotas[0].Value)
	}
	if data.Quotas[1].Value != "75 GB" {
		t.Errorf("storage value: got %q", data.Quotas[1].Value)
	}
}

func TestQuotaTool_PartialFailureIsSuccess(t *testing.T) {
	fq := &fakeQuotas{
		values: map[string]struct {
			value float64
			unit  string
		}{
			"lambda/L-B99A9384": {1000, "Count"},
		},
		errs: map[string]error{
			"lambda/L-2ACBD22F": errors.New("throttled"),
		},
	}
	res := quotaToolResult(t, fq, `{"service_name":"lambda"}`)
	if res.IsError() {
		t.Fatalf("partial failure should still succeed: %s", res.Error)
	}
	data := res.Data.(tools.QuotaLookupData)
	if len(data.Quotas) != 1 {
		t.Fatalf("expected 1 resolved quota, got %d", len(data.Quotas))
	}
}

func TestQuotaTool_AllLookupsFail(t *testing.T) {
	fq := &fakeQuotas{errs: map[string]error{
		"lambda/L-B99A9384": errors.New("down"),
		"lambda/L-2ACBD22F": errors.New("down"),
	}}
	res := quotaToolResult(t, fq, `{"service_name":"lambda"}`)
	if !res.IsError() {
		t.Fatal("expected failure when every lookup fails")
	}
	if !strings.Contains(res.Error, "lambda") || !strings.Contains(res.Error, "sns") {
		t.Errorf("failure should enumerate supported services, got %q", res.Error)
	}
}

func TestQuotaTool_UnsupportedService(t *testing.T) {
	res := quotaToolResult(t, &fakeQuotas{}, `{"service_name":"route53"}`)
	if !res.IsError() {
		t.Fatal("expected failure for unsupported service")
	}
	for _, name := range []string{"api-gateway", "dynamodb", "lambda", "s3", "sns", "sqs"} {
		if !strings.Contains(res.Error, name) {
			t.Errorf("failure message missing supported service %q: %s", name, res.Error)
		}
	}
	if len((&fakeQuotas{}).calls) != 0 {
		t.Error("no backend calls expected for unsupported service")
	}
}

func TestQuotaTool_NilBackend(t *testing.T) {
	res := quotaToolResult(t, nil, `{"service_name":"lambda"}`)
	if !res.IsError() {
		t.Fatal("expected failure with nil backend")
	}
}
