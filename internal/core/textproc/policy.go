package textproc

import (
	"fmt"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

type LengthPolicyConfig struct {
	Min     int
	Max     int
	Step    int
	Default int

	// Floor is the smallest min_length ever produced.
	Floor int
	// Delta is the gap between max_length and min_length above the floor.
	Delta int
}

func DefaultLengthPolicyConfig() LengthPolicyConfig {
	return LengthPolicyConfig{
		Min:     100,
		Max:     500,
		Step:    10,
		Default: 300,
		Floor:   50,
		Delta:   50,
	}
}

type LengthPolicy struct {
	cfg LengthPolicyConfig
}

// NewLengthPolicy rejects configurations where some accepted target would
// produce min_length >= max_length.
func NewLengthPolicy(cfg LengthPolicyConfig) (*LengthPolicy, error) {
	if cfg.Floor < 1 {
		return nil, fmt.Errorf("summary length floor must be positive, got %d", cfg.Floor)
	}
	if cfg.Delta < 1 {
		return nil, fmt.Errorf("summary length delta must be positive, got %d", cfg.Delta)
	}
	if cfg.Min <= cfg.Floor {
		return nil, fmt.Errorf("summary length minimum %d must exceed floor %d", cfg.Min, cfg.Floor)
	}
	if cfg.Max < cfg.Min {
		return nil, fmt.Errorf("summary length range [%d, %d] is empty", cfg.Min, cfg.Max)
	}
	if cfg.Step <= 0 {
		cfg.Step = 1
	}
	if cfg.Default < cfg.Min || cfg.Default > cfg.Max {
		cfg.Default = cfg.Min
	}
	return &LengthPolicy{cfg: cfg}, nil
}

func (p *LengthPolicy) Bounds(target int) (domain.SummaryLengthBounds, error) {
	if target < p.cfg.Min || target > p.cfg.Max {
		return domain.SummaryLengthBounds{}, domain.WrapError(
			domain.ErrInvalidInput,
			"summary length",
			fmt.Errorf("target %d outside [%d, %d]", target, p.cfg.Min, p.cfg.Max),
		)
	}
	return domain.SummaryLengthBounds{
		MaxLength: target,
		MinLength: max(p.cfg.Floor, target-p.cfg.Delta),
	}, nil
}

func (p *LengthPolicy) Range() domain.SummaryLengthRange {
	return domain.SummaryLengthRange{
		Min:     p.cfg.Min,
		Max:     p.cfg.Max,
		Step:    p.cfg.Step,
		Default: p.cfg.Default,
	}
}
