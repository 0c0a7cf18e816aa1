// Package policy provides per-deck scheduling policies and their YAML storage.
package policy

// GatherOrder controls how new cards are gathered from the deck.
type GatherOrder string

const (
	GatherInsertion    GatherOrder = "insertion"
	GatherPositionAsc  GatherOrder = "position_asc"
	GatherPositionDesc GatherOrder = "position_desc"
	GatherRandom       GatherOrder = "random"
)

// NewSortOrder controls how gathered new cards are sorted.
type NewSortOrder string

const (
	NewSortGathered NewSortOrder = "gathered"
	NewSortPosition NewSortOrder = "position"
	NewSortRandom   NewSortOrder = "random"
)

// ReviewSortOrder controls how due review cards are sorted.
type ReviewSortOrder string

const (
	ReviewSortDueAsc      ReviewSortOrder = "due_asc"
	ReviewSortRandom      ReviewSortOrder = "random"
	ReviewSortOverdueness ReviewSortOrder = "overdueness"
)

// InterleaveMode controls where new cards appear relative to reviews.
type InterleaveMode string

const (
	InterleaveMix          InterleaveMode = "mix"
	InterleaveNewFirst     InterleaveMode = "new_first"
	InterleaveReviewsFirst InterleaveMode = "reviews_first"
)

// InsertionOrder controls how positions are assigned to newly created cards.
type InsertionOrder string

const (
	InsertionSequential InsertionOrder = "sequential"
	InsertionRandom     InsertionOrder = "random"
)

// LeechAction is what happens to a card once it crosses the leech threshold.
type LeechAction string

const (
	LeechSuspend LeechAction = "suspend"
	LeechTag     LeechAction = "tag"
)

// DeckPolicy configures scheduling for one deck. It is immutable during a
// session and editable between sessions.
type DeckPolicy struct {
	NewPerDay    int `yaml:"new_per_day" mapstructure:"new_per_day" validate:"gte=0"`
	ReviewPerDay int `yaml:"review_per_day" mapstructure:"review_per_day" validate:"gte=0"`

	// Learning and relearning steps in minutes. An empty sequence means
	// cards graduate immediately.
	LearningSteps   []int `yaml:"learning_steps" mapstructure:"learning_steps" validate:"dive,gt=0"`
	RelearningSteps []int `yaml:"relearning_steps" mapstructure:"relearning_steps" validate:"dive,gt=0"`

	GraduatingInterval int `yaml:"graduating_interval" mapstructure:"graduating_interval" validate:"gte=1"`
	EasyInterval       int `yaml:"easy_interval" mapstructure:"easy_interval" validate:"gte=1"`
	MaxInterval        int `yaml:"max_interval" mapstructure:"max_interval" validate:"gte=1"`

	IntervalModifier float64 `yaml:"interval_modifier" mapstructure:"interval_modifier" validate:"gt=0"`
	HardIntervalMult float64 `yaml:"hard_interval_mult" mapstructure:"hard_interval_mult" validate:"gt=0"`
	EasyBonus        float64 `yaml:"easy_bonus" mapstructure:"easy_bonus" validate:"gte=1"`

	MinIntervalAfterLapse int     `yaml:"min_interval_after_lapse" mapstructure:"min_interval_after_lapse" validate:"gte=1"`
	NewIntervalMultiplier float64 `yaml:"new_interval_multiplier" mapstructure:"new_interval_multiplier" validate:"gte=0,lte=1"`

	LeechThreshold int         `yaml:"leech_threshold" mapstructure:"leech_threshold" validate:"gte=1"`
	LeechAction    LeechAction `yaml:"leech_action" mapstructure:"leech_action" validate:"oneof=suspend tag"`

	NewGatherOrder  GatherOrder     `yaml:"new_gather_order" mapstructure:"new_gather_order" validate:"oneof=insertion position_asc position_desc random"`
	NewSortOrder    NewSortOrder    `yaml:"new_sort_order" mapstructure:"new_sort_order" validate:"oneof=gathered position random"`
	ReviewSortOrder ReviewSortOrder `yaml:"review_sort_order" mapstructure:"review_sort_order" validate:"oneof=due_asc random overdueness"`
	InterleaveMode  InterleaveMode  `yaml:"interleave_mode" mapstructure:"interleave_mode" validate:"oneof=mix new_first reviews_first"`
	InsertionOrder  InsertionOrder  `yaml:"insertion_order" mapstructure:"insertion_order" validate:"oneof=sequential random"`

	BuryNewSiblings    bool `yaml:"bury_new_siblings" mapstructure:"bury_new_siblings"`
	BuryReviewSiblings bool `yaml:"bury_review_siblings" mapstructure:"bury_review_siblings"`
}

// Default returns the policy applied to decks without a stored policy file.
func Default() DeckPolicy {
	return DeckPolicy{
		NewPerDay:             20,
		ReviewPerDay:          200,
		LearningSteps:         []int{1, 10},
		RelearningSteps:       []int{10},
		GraduatingInterval:    1,
		EasyInterval:          4,
		MaxInterval:           36500,
		IntervalModifier:      1.0,
		HardIntervalMult:      1.2,
		EasyBonus:             1.3,
		MinIntervalAfterLapse: 1,
		NewIntervalMultiplier: 0.0,
		LeechThreshold:        8,
		LeechAction:           LeechSuspend,
		NewGatherOrder:        GatherPositionAsc,
		NewSortOrder:          NewSortGathered,
		ReviewSortOrder:       ReviewSortDueAsc,
		InterleaveMode:        InterleaveMix,
		InsertionOrder:        InsertionSequential,
		BuryNewSiblings:       false,
		BuryReviewSiblings:    false,
	}
}
