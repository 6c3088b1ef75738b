package models

// Order lifecycle stages. Statuses are persisted as the literal display
// string, so these constants are the storage format, not just labels.
const (
	// Common
	StatusPending  = "掌櫃確認中"
	StatusAccepted = "委託成立"

	// Doll flow
	StatusConceptDrawing   = "效果圖繪製中"
	StatusConceptReview    = "效果圖確認中"
	StatusConceptConfirmed = "效果圖已確認"
	StatusMaking           = "小餅製作中"
	StatusProductConfirmed = "成品圖已確認"
	StatusArtistShipped    = "老師已發貨"
	StatusWarehouseArrived = "集運倉已入倉"
	StatusConsolidating    = "集運中"
	StatusSiamSorting      = "暹羅分裝中"
	StatusSiamShipped      = "暹羅已出貨"
	StatusDelivered        = "已送達"

	// Badge/stall flow
	StatusQuantitySurvey      = "數量調查中"
	StatusSharedPayment       = "均攤收款中"
	StatusSampleProduction    = "樣品製作中"
	StatusBulkPayment         = "大貨收款中"
	StatusLeaderShipping      = "團主出貨中"
	StatusConsolidatedShip    = "集運出貨中"
	StatusSiamPacking         = "暹羅打包中"
	StatusTransactionComplete = "交易完成"
)

// DollStatusFlow is the ordered lifecycle for doll commission orders,
// from intake through delivery.
var DollStatusFlow = []string{
	StatusPending,
	StatusAccepted,
	StatusConceptDrawing,
	StatusConceptReview,
	StatusConceptConfirmed,
	StatusMaking,
	StatusProductConfirmed,
	StatusArtistShipped,
	StatusWarehouseArrived,
	StatusConsolidating,
	StatusSiamSorting,
	StatusSiamShipped,
	StatusDelivered,
}

// BadgeStatusFlow is the ordered lifecycle for badge/stall orders,
// from quantity survey through transaction complete.
var BadgeStatusFlow = []string{
	StatusQuantitySurvey,
	StatusSharedPayment,
	StatusSampleProduction,
	StatusBulkPayment,
	StatusLeaderShipping,
	StatusConsolidatedShip,
	StatusWarehouseArrived,
	StatusSiamPacking,
	StatusSiamShipped,
	StatusTransactionComplete,
}

// legacyStatusMap maps historical free-text status strings, written before
// the vocabulary was finalized, to their current equivalents. Orders carrying
// a legacy value are normalized on read; stored data is left as written.
var legacyStatusMap = map[string]string{
	"已送達(委託完成)": StatusDelivered,
}

// NormalizeStatus maps known legacy status strings to their current
// vocabulary value. Unknown strings pass through unchanged.
func NormalizeStatus(status string) string {
	if normalized, ok := legacyStatusMap[status]; ok {
		return normalized
	}
	return status
}

// StatusFlowFor returns the status vocabulary for the given order kind.
func StatusFlowFor(kind OrderKind) []string {
	if kind == OrderKindBadge {
		return BadgeStatusFlow
	}
	return DollStatusFlow
}

// StatusIndex returns the position of status within the kind's vocabulary,
// after legacy normalization, or -1 when the status is not in the flow.
func StatusIndex(status string, kind OrderKind) int {
	normalized := NormalizeStatus(status)
	for i, s := range StatusFlowFor(kind) {
		if s == normalized {
			return i
		}
	}
	return -1
}

// StageState describes one stage of an order's progress timeline.
type StageState struct {
	Label     string `json:"label"`
	Completed bool   `json:"completed"`
	Current   bool   `json:"current"`
}

// ProgressTimeline renders the order's status against its kind's vocabulary:
// stages before the current index are completed, the matching index is
// current, later stages are pending.
func ProgressTimeline(status string, kind OrderKind) []StageState {
	flow := StatusFlowFor(kind)
	current := StatusIndex(status, kind)

	stages := make([]StageState, len(flow))
	for i, label := range flow {
		stages[i] = StageState{
			Label:     label,
			Completed: current >= 0 && i < current,
			Current:   i == current,
		}
	}
	return stages
}

// IsTerminalStatus reports whether the status is the final stage of its
// kind's lifecycle. Legacy delivered strings count as terminal.
func IsTerminalStatus(status string, kind OrderKind) bool {
	flow := StatusFlowFor(kind)
	return NormalizeStatus(status) == flow[len(flow)-1]
}
