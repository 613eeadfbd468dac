package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

// QuotaFetcher is the read-only surface of the quota registry backend.
// The production implementation wraps the Service Quotas API.
type QuotaFetcher interface {
	GetServiceQuota(ctx context.Context, serviceCode, quotaCode string) (value float64, unit string, err error)
}

// QuotaLookupInput is the model-facing input schema for get_aws_service_info.
type QuotaLookupInput struct {
	ServiceName string `json:"service_name" jsonschema_description:"AWS service name to look up, e.g. \"lambda\" or \"api gateway\"."`
}

var quotaLookupInputSchema = GenerateSchema[QuotaLookupInput]()

// quotaSpec names one quota code and its display label.
type quotaSpec struct {
	Code  string
	Label string
}

// serviceSpec maps a normalized service name to its Service Quotas service
// code and the quota codes reported for it.
type serviceSpec struct {
	Code   string
	Quotas []quotaSpec
}

// supportedServices is keyed by normalized service name. Quota codes are part
// of the backend contract; labels are what the model sees.
var supportedServices = map[string]serviceSpec{
	"lambda": {Code: "lambda", Quotas: []quotaSpec{
		{Code: "L-B99A9384", Label: "同時実行数"},
		{Code: "L-2ACBD22F", Label: "関数とレイヤーのストレージ"},
	}},
	"dynamodb": {Code: "dynamodb", Quotas: []quotaSpec{
		{Code: "L-F98FE922", Label: "テーブルの最大数"},
	}},
	"s3": {Code: "s3", Quotas: []quotaSpec{
		{Code: "L-DC2B2D3D", Label: "汎用バケットの数"},
	}},
	"api-gateway": {Code: "apigateway", Quotas: []quotaSpec{
		{Code: "L-8A5B8E43", Label: "アカウントレベルのスロットリングレート (リクエスト/秒)"},
	}},
	"sqs": {Code: "sqs", Quotas: []quotaSpec{
		{Code: "L-17FBEC8B", Label: "メッセージグループあたりの処理中メッセージ数"},
	}},
	"sns": {Code: "sns", Quotas: []quotaSpec{
		{Code: "L-F8E2BA85", Label: "アカウントあたりのトピック数"},
	}},
}

// serviceAliases rewrites common spellings onto table keys before lookup.
var serviceAliases = map[string]string{
	"apigateway":  "api-gateway",
	"api gateway": "api-gateway",
}

// QuotaValue is one resolved quota in the tool's success payload.
type QuotaValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// QuotaLookupData is the success payload of get_aws_service_info.
type QuotaLookupData struct {
	Service string       `json:"service"`
	Quotas  []QuotaValue `json:"quotas"`
}

// NewQuotaTool builds the get_aws_service_info tool over the given backend.
func NewQuotaTool(quotas QuotaFetcher, logger *slog.Logger) ToolDefinition {
	return ToolDefinition{
		Name:        "get_aws_service_info",
		Description: "指定された AWS サービスのクォータ（上限値）を取得します。対応サービス: lambda, dynamodb, s3, api-gateway, sqs, sns",
		InputSchema: quotaLookupInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) Result {
			var in QuotaLookupInput
			if err := json.Unmarshal(input, &in); err != nil {
				return Fail("invalid input: %v", err)
			}

			if quotas == nil {
				return Fail("quota lookup backend is not configured")
			}

			name := NormalizeServiceName(in.ServiceName)
			spec, ok := supportedServices[name]
			if !ok {
				return Fail("unsupported service %q; supported services: %s",
					in.ServiceName, strings.Join(supportedServiceNames(), ", "))
			}

			var resolved []QuotaValue
			for _, q := range spec.Quotas {
				value, unit, err := quotas.GetServiceQuota(ctx, spec.Code, q.Code)
				if err != nil {
					// Partial results are acceptable; skip this quota and
					// keep going.
					logger.Warn("quota lookup failed",
						"service", spec.Code, "quota", q.Code, "error", err)
					continue
				}
				resolved = append(resolved, QuotaValue{
					Name:  q.Label,
					Value: FormatQuotaValue(value, unit),
				})
			}
			if len(resolved) == 0 {
				return Fail("no quotas could be resolved for %q; supported services: %s",
					in.ServiceName, strings.Join(supportedServiceNames(), ", "))
			}
			return OK(QuotaLookupData{Service: name, Quotas: resolved})
		},
	}
}

// NormalizeServiceName lower-cases the name, collapses whitespace and
// underscores to hyphens, and applies known aliases. Alias mapping runs on
// the whitespace-preserving lowercase form first so multi-word aliases like
// "api gateway" match.
func NormalizeServiceName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := serviceAliases[s]; ok {
		return alias
	}
	s = strings.Join(strings.Fields(s), "-")
	s = strings.ReplaceAll(s, "_", "-")
	if alias, ok := serviceAliases[s]; ok {
		return alias
	}
	return s
}

// FormatQuotaValue renders a quota value with its unit label. Byte-scale
// units get a size suffix, Milliseconds becomes "ms", Count renders as a
// bare integer, and anything else (including "None") is the raw value.
func FormatQuotaValue(value float64, unit string) string {
	raw := strconv.FormatFloat(value, 'f', -1, 64)
	switch unit {
	case "Bytes":
		return raw + " B"
	case "Kilobytes":
		return raw + " KB"
	case "Megabytes":
		return raw + " MB"
	case "Gigabytes":
		return raw + " GB"
	case "Terabytes":
		return raw + " TB"
	case "Milliseconds":
		return raw + " ms"
	case "Count":
		return raw
	default:
		return raw
	}
}

func supportedServiceNames() []string {
	names := make([]string, 0, len(supportedServices))
	for name := range supportedServices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
