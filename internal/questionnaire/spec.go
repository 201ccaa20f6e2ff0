// Package questionnaire implements the conversation state machine that
// drives the BorgPad onboarding questionnaire: the step spec, per-user
// session, the engine turning inbound events into session transitions plus
// outbound effects, and the finalizer producing completed submissions.
//
// Everything in this package is pure: no I/O, no suspension points. The
// Telegram transport, identity provider and stores live in internal/bot,
// internal/identity and internal/storage and consume the effects produced
// here.
package questionnaire

import "fmt"

type StepKind int

const (
	FreeText StepKind = iota
	ImageReference
	ChoiceButtons
)

// Choice is one inline button option: Label is shown to the user, Value is
// what gets stored and carried in callback data.
type Choice struct {
	Label string
	Value string
}

// StepDefinition describes one question of the fixed questionnaire.
type StepDefinition struct {
	Index  int
	Field  string
	Kind   StepKind
	Prompt string

	// Validate is required for FreeText steps. It returns the value to
	// store or a user-facing error.
	Validate func(raw string) (string, error)

	// Options is the static option set for ChoiceButtons steps.
	Options []Choice

	// OptionsFilter, when set, narrows Options based on earlier answers
	// (e.g. FDV-max choices must exceed the chosen FDV-min).
	OptionsFilter func(answers map[string]string, options []Choice) []Choice
}

// Spec is the ordered, immutable list of steps for one deployment.
type Spec struct {
	steps []StepDefinition
}

func NewSpec(steps []StepDefinition) (*Spec, error) {
	for i, step := range steps {
		if step.Index != i {
			return nil, fmt.Errorf("step %q has index %d, want %d", step.Field, step.Index, i)
		}
		if step.Field == "" {
			return nil, fmt.Errorf("step %d has no field name", i)
		}
		if step.Kind == ChoiceButtons && len(step.Options) == 0 {
			return nil, fmt.Errorf("choice step %q has no options", step.Field)
		}
	}
	return &Spec{steps: steps}, nil
}

func (s *Spec) Len() int {
	return len(s.steps)
}

func (s *Spec) Step(i int) StepDefinition {
	return s.steps[i]
}

// OptionsFor resolves the option set for a step, applying its dynamic
// filter against the answers collected so far.
func (s *Spec) OptionsFor(step StepDefinition, answers map[string]string) []Choice {
	if step.OptionsFilter == nil {
		return step.Options
	}
	return step.OptionsFilter(answers, step.Options)
}

// Answer field names of the default BorgPad questionnaire.
const (
	FieldProjectName    = "project_name"
	FieldDescription    = "description"
	FieldProjectPicture = "project_picture"
	FieldWebsiteLink    = "website_link"
	FieldCommunityLink  = "community_link"
	FieldXLink          = "x_link"
	FieldChain          = "chain"
	FieldSector         = "sector"
	FieldTGEDate        = "tge_date"
	FieldFDVMin         = "fdv_min"
	FieldFDVMax         = "fdv_max"
	FieldTicker         = "ticker"
	FieldTokenPicture   = "token_picture"
	FieldDataRoom       = "data_room"
)

var fdvChoices = []Choice{
	{Label: "$5M", Value: "$5M"},
	{Label: "$10M", Value: "$10M"},
	{Label: "$15M", Value: "$15M"},
	{Label: "$25M", Value: "$25M"},
	{Label: "$50M", Value: "$50M"},
	{Label: "$100M", Value: "$100M"},
}

// filterFDVMax keeps only choices strictly greater than the chosen minimum.
func filterFDVMax(answers map[string]string, options []Choice) []Choice {
	min := fdvMillions(answers[FieldFDVMin])
	if min < 0 {
		return options
	}
	filtered := make([]Choice, 0, len(options))
	for _, opt := range options {
		if fdvMillions(opt.Value) > min {
			filtered = append(filtered, opt)
		}
	}
	return filtered
}

// NewBorgPadSpec builds the default 14-step onboarding questionnaire.
func NewBorgPadSpec() *Spec {
	steps := []StepDefinition{
		{
			Index: 0, Field: FieldProjectName, Kind: FreeText,
			Prompt:   "1/14 - What is your project name? 🏷️",
			Validate: ValidateNonEmpty,
		},
		{
			Index: 1, Field: FieldDescription, Kind: FreeText,
			Prompt:   "2/14 - One sentence to describe your project 💎 (80 characters max)",
			Validate: ValidateDescription,
		},
		{
			Index: 2, Field: FieldProjectPicture, Kind: ImageReference,
			Prompt: "3/14 - Send your project picture in jpg or png format 🖼️ (WITH COMPRESSION - so please ensure a high quality image first)",
		},
		{
			Index: 3, Field: FieldWebsiteLink, Kind: FreeText,
			Prompt:   "4/14 - Your website link 🌐",
			Validate: ValidateLink,
		},
		{
			Index: 4, Field: FieldCommunityLink, Kind: FreeText,
			Prompt:   "5/14 - Your telegram OR discord link (your main channel to communicate with your community) 💬",
			Validate: ValidateNonEmpty,
		},
		{
			Index: 5, Field: FieldXLink, Kind: FreeText,
			Prompt:   "6/14 - Your X link 🐦",
			Validate: ValidateLink,
		},
		{
			Index: 6, Field: FieldChain, Kind: ChoiceButtons,
			Prompt: "7/14 - On which chain do you want to deploy? ⛓️",
			Options: []Choice{
				{Label: "Solana", Value: "Solana"},
				{Label: "Ethereum", Value: "Ethereum"},
				{Label: "Base", Value: "Base"},
				{Label: "Arbitrum", Value: "Arbitrum"},
			},
		},
		{
			Index: 7, Field: FieldSector, Kind: ChoiceButtons,
			Prompt: "8/14 - What is your sector? 🎯",
			Options: []Choice{
				{Label: "DeFi", Value: "DeFi"},
				{Label: "DePIN", Value: "DePIN"},
				{Label: "SocialFi", Value: "SocialFi"},
				{Label: "Gaming", Value: "Gaming"},
				{Label: "AI", Value: "AI"},
				{Label: "Other", Value: "Other"},
			},
		},
		{
			Index: 8, Field: FieldTGEDate, Kind: FreeText,
			Prompt:   "9/14 - When do you plan to do your TGE? 📅",
			Validate: ValidateNonEmpty,
		},
		{
			Index: 9, Field: FieldFDVMin, Kind: ChoiceButtons,
			Prompt:  "10/14 - Which minimum FDV do you want? 💰",
			Options: fdvChoices,
		},
		{
			Index: 10, Field: FieldFDVMax, Kind: ChoiceButtons,
			Prompt:        "11/14 - And which maximum FDV? 💰",
			Options:       fdvChoices,
			OptionsFilter: filterFDVMax,
		},
		{
			Index: 11, Field: FieldTicker, Kind: FreeText,
			Prompt:   "12/14 - Your token TICKER $XXXXX 🎫 (must start with '$' and be up to 5 characters long in uppercase)",
			Validate: ValidateTicker,
		},
		{
			Index: 12, Field: FieldTokenPicture, Kind: ImageReference,
			Prompt: "13/14 - Send your token picture in jpg or png format 🖼️ (WITH COMPRESSION - so please ensure a high quality image first)",
		},
		{
			Index: 13, Field: FieldDataRoom, Kind: FreeText,
			Prompt:   "14/14 - To provide the most information to your investors - and make them want to invest - you need a data room 📚 Share the link here",
			Validate: ValidateNonEmpty,
		},
	}

	spec, err := NewSpec(steps)
	if err != nil {
		panic(err)
	}
	return spec
}
