package constant

// Interview / phase statuses
const (
	InterviewStatusReady      = "ready"
	InterviewStatusInProgress = "in_progress"
	InterviewStatusCompleted  = "completed"

	Phase1StatusAwaitingProbe = "awaiting_probe"
	Phase1StatusCompleted     = "completed"

	PhaseStatusInProgress = "in_progress"
	PhaseStatusCompleted  = "completed"

	Phase5StatusAwaitingSelfDescription = "awaiting_self_description"
	Phase5StatusAwaitingActionChoice    = "awaiting_action_choice"
	Phase5StatusAwaitingGrandSimulation = "awaiting_grand_simulation"
	Phase5StatusAwaitingGrandAnswer     = "awaiting_grand_answer"
	Phase5StatusCompleted               = "completed"
)

const (
	IncoherenceLevelLow  = "low"
	IncoherenceLevelHigh = "high"
)

const (
	ReviewStatusPending  = "pending"
	ReviewStatusReviewed = "reviewed"
	ReviewStatusFlagged  = "flagged"
)

// Option keys for every single-choice question in the flow.
var OptionKeys = []string{"A", "B", "C", "D"}

const InterviewQuestionTotal = 5

// Temperatures are fixed per call site: analytical steps run cold, generative
// steps run warm.
const (
	TempAnalytical = 0.25
	TempGenerative = 0.75
)

// ChatRefusalMessage is the fixed string returned by the post-completion chat
// for anything unrelated to the diagnostic content.
const ChatRefusalMessage = "Je ne peux répondre qu'aux questions concernant votre diagnostic. Reformulez votre question autour de votre parcours."
