package metrics

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// 打卡引擎的业务指标。Init 未调用时所有 Record* 都是空操作，
// 这样单测和 scheduler 等不导出指标的进程不用额外关心。

var (
	redemptionTotal  metric.Int64Counter
	codesIssuedTotal metric.Int64Counter
	strikeLockouts   metric.Int64Counter
)

func Init() error {
	meter := otel.Meter("onshift")

	var err error
	redemptionTotal, err = meter.Int64Counter(
		"attendance.redemptions.total",
		metric.WithDescription("Total code redemption attempts by action and outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return err
	}

	codesIssuedTotal, err = meter.Int64Counter(
		"attendance.codes.issued.total",
		metric.WithDescription("Total rotating codes issued per office"),
		metric.WithUnit("{code}"),
	)
	if err != nil {
		return err
	}

	strikeLockouts, err = meter.Int64Counter(
		"attendance.strike.lockouts.total",
		metric.WithDescription("Redemption attempts rejected by the failure throttle"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// RecordRedemption 记录一次兑换尝试的结果。outcome 为业务错误码或 "ok"。
func RecordRedemption(ctx context.Context, action, outcome string) {
	if redemptionTotal == nil {
		return
	}
	redemptionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("outcome", outcome),
	))
}

func RecordCodeIssued(ctx context.Context, officeID int64) {
	if codesIssuedTotal == nil {
		return
	}
	codesIssuedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("office_id", strconv.FormatInt(officeID, 10)),
	))
}

func RecordStrikeLockout(ctx context.Context, action string) {
	if strikeLockouts == nil {
		return
	}
	strikeLockouts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
	))
}
