package observability

// Metric name prefixes
const (
	MetricPrefix = "taixiu"
)

// Metric names
const (
	// Betting metrics
	BetsPlacedTotal    = MetricPrefix + ".bets.placed_total"
	BetsWageredAmount  = MetricPrefix + ".bets.wagered_amount"
	RoundsSettledTotal = MetricPrefix + ".rounds.settled_total"
	SettlementDuration = MetricPrefix + ".rounds.settlement_duration"
	JackpotsTotal      = MetricPrefix + ".rounds.jackpots_total"
	HouseGainAmount    = MetricPrefix + ".house.gain_amount"

	// Approval metrics
	ApprovalDecisionsTotal = MetricPrefix + ".approvals.decisions_total"

	// Scheduler metrics
	SchedulerStallsTotal = MetricPrefix + ".scheduler.stalls_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// Balance metrics
	BalanceTransactionsTotal = MetricPrefix + ".balance.transactions_total"

	// Database metrics
	DatabaseQueriesTotal  = MetricPrefix + ".database.queries_total"
	DatabaseQueryDuration = MetricPrefix + ".database.query_duration"
)

// Label keys
const (
	LabelType       = "type"
	LabelEventType  = "event_type"
	LabelSide       = "side"
	LabelOutcome    = "outcome"
	LabelOverridden = "overridden"
	LabelKind       = "kind"
	LabelStatus     = "status"

	// Database labels
	LabelRepository = "repository"
	LabelMethod     = "method"
)
