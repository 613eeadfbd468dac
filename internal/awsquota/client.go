// Package awsquota wraps the Service Quotas API behind the narrow
// read-only surface the quota tool needs.
package awsquota

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/servicequotas"
)

// Client performs quota lookups against the Service Quotas API.
type Client struct {
	sq *servicequotas.Client
}

// New builds a Client using the default AWS config chain. region overrides
// the chain's region when non-empty.
func New(ctx context.Context, region string) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Client{sq: servicequotas.NewFromConfig(cfg)}, nil
}

// GetServiceQuota fetches one quota's applied value and unit.
func (c *Client) GetServiceQuota(ctx context.Context, serviceCode, quotaCode string) (float64, string, error) {
	out, err := c.sq.GetServiceQuota(ctx, &servicequotas.GetServiceQuotaInput{
		ServiceCode: aws.String(serviceCode),
		QuotaCode:   aws.String(quotaCode),
	})
	if err != nil {
		return 0, "", fmt.Errorf("get service quota %s/%s: %w", serviceCode, quotaCode, err)
	}
	if out.Quota == nil || out.Quota.Value == nil {
		return 0, "", fmt.Errorf("get service quota %s/%s: empty quota in response", serviceCode, quotaCode)
	}
	return aws.ToFloat64(out.Quota.Value), aws.ToString(out.Quota.Unit), nil
}
