package questionnaire

import (
	"fmt"
	"strconv"
	"strings"
)

// CompletedSubmission is the immutable record produced once every step has
// been answered. UserID (the Telegram user ID) is the stable identity key
// for upserts; missing optional fields are empty strings, never null.
type CompletedSubmission struct {
	UserID          int64  `db:"user_id" json:"user_id"`
	TwitterUsername string `db:"twitter_username" json:"twitter_username"`
	ProjectName     string `db:"project_name" json:"project_name"`
	Description     string `db:"description" json:"description"`
	ProjectPicture  string `db:"project_picture" json:"project_picture"`
	WebsiteLink     string `db:"website_link" json:"website_link"`
	CommunityLink   string `db:"community_link" json:"community_link"`
	XLink           string `db:"x_link" json:"x_link"`
	Chain           string `db:"chain" json:"chain"`
	Sector          string `db:"sector" json:"sector"`
	TGEDate         string `db:"tge_date" json:"tge_date"`
	FDV             string `db:"fdv" json:"fdv"`
	Ticker          string `db:"ticker" json:"ticker"`
	TokenPicture    string `db:"token_picture" json:"token_picture"`
	DataRoom        string `db:"data_room" json:"data_room"`
}

// Finalizer assembles completed submissions and their user/operator-facing
// projections. Finalize is idempotent: same answers, same record.
type Finalizer struct{}

func NewFinalizer() *Finalizer {
	return &Finalizer{}
}

// Finalize builds the CompletedSubmission from a session that reached the
// terminal step. A missing identity handle aborts the submission; the
// session stays at the terminal step so finalize can be retried.
func (f *Finalizer) Finalize(s Session) (CompletedSubmission, []Effect, error) {
	if s.IdentityHandle == "" {
		return CompletedSubmission{}, nil, fmt.Errorf("cannot finalize submission: no verified X account on record, please reconnect with /start")
	}

	sub := CompletedSubmission{
		UserID:          s.UserID,
		TwitterUsername: s.IdentityHandle,
		ProjectName:     s.Answers[FieldProjectName],
		Description:     s.Answers[FieldDescription],
		ProjectPicture:  s.Answers[FieldProjectPicture],
		WebsiteLink:     s.Answers[FieldWebsiteLink],
		CommunityLink:   s.Answers[FieldCommunityLink],
		XLink:           s.Answers[FieldXLink],
		Chain:           s.Answers[FieldChain],
		Sector:          s.Answers[FieldSector],
		TGEDate:         s.Answers[FieldTGEDate],
		FDV:             combineFDV(s.Answers[FieldFDVMin], s.Answers[FieldFDVMax]),
		Ticker:          s.Answers[FieldTicker],
		TokenPicture:    s.Answers[FieldTokenPicture],
		DataRoom:        s.Answers[FieldDataRoom],
	}

	effects := []Effect{
		PersistSubmission{Submission: sub},
		SendText{Text: Summary(sub)},
		NotifyOperator{Text: operatorNotice(sub)},
	}
	return sub, effects, nil
}

// combineFDV joins the two FDV choices into the canonical display string,
// e.g. "$10M - $25M".
func combineFDV(min, max string) string {
	if min == "" && max == "" {
		return ""
	}
	return min + " - " + max
}

func savedOrNot(ref string) string {
	if ref != "" {
		return "Saved ✅"
	}
	return "Not provided"
}

// Summary formats the user-facing recap of all answers.
func Summary(sub CompletedSubmission) string {
	var b strings.Builder
	b.WriteString("📋 Project Summary:\n\n")
	b.WriteString("🏷️ Project Name: " + sub.ProjectName + "\n")
	b.WriteString("💎 Description: " + sub.Description + "\n")
	b.WriteString("🖼️ Project Picture: " + savedOrNot(sub.ProjectPicture) + "\n")
	b.WriteString("🌐 Website: " + sub.WebsiteLink + "\n")
	b.WriteString("💬 Community Link: " + sub.CommunityLink + "\n")
	b.WriteString("🐦 X Link: " + sub.XLink + "\n")
	b.WriteString("⛓️ Chain: " + sub.Chain + "\n")
	b.WriteString("🎯 Sector: " + sub.Sector + "\n")
	b.WriteString("📅 TGE Date: " + sub.TGEDate + "\n")
	b.WriteString("💰 FDV: " + sub.FDV + "\n")
	b.WriteString("🎫 Token Ticker: " + sub.Ticker + "\n")
	b.WriteString("🖼️ Token Picture: " + savedOrNot(sub.TokenPicture) + "\n")
	b.WriteString("📚 Data Room: " + sub.DataRoom + "\n\n")
	b.WriteString("🎉 Thank you for providing all the information!")
	return b.String()
}

func operatorNotice(sub CompletedSubmission) string {
	return fmt.Sprintf(
		"🆕 New project submission\n\n"+
			"Project: %s\n"+
			"Curator: @%s (user %d)\n"+
			"Chain: %s\n"+
			"Sector: %s\n"+
			"FDV: %s\n"+
			"Ticker: %s\n"+
			"TGE: %s",
		sub.ProjectName,
		sub.TwitterUsername,
		sub.UserID,
		sub.Chain,
		sub.Sector,
		sub.FDV,
		sub.Ticker,
		sub.TGEDate,
	)
}

// ProjectDocument is the denormalized JSON projection consumed by the
// downstream launchpad frontend. Every field has a concrete zero default:
// empty string, 0, false or an empty array, never null.
type ProjectDocument struct {
	ID     string         `json:"id"`
	Config DocumentConfig `json:"config"`
	Info   DocumentInfo   `json:"info"`
}

type DocumentConfig struct {
	Ticker   string `json:"ticker"`
	FDV      string `json:"fdv"`
	DataRoom string `json:"dataRoom"`
}

type DocumentInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Logo        string          `json:"logo"`
	TokenLogo   string          `json:"tokenLogo"`
	Website     string          `json:"website"`
	Community   string          `json:"community"`
	XAccount    string          `json:"xAccount"`
	Sector      string          `json:"sector"`
	Chain       DocumentChain   `json:"chain"`
	Curator     DocumentCurator `json:"curator"`
	Tiers       []DocumentTier  `json:"tiers"`
	Timeline    []DocumentPhase `json:"timeline"`
}

type DocumentChain struct {
	Name     string `json:"name"`
	Deployed bool   `json:"deployed"`
}

type DocumentCurator struct {
	Handle   string `json:"handle"`
	Verified bool   `json:"verified"`
}

type DocumentTier struct {
	Name          string `json:"name"`
	MinAllocation int    `json:"minAllocation"`
}

type DocumentPhase struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// Document projects a submission into its downstream JSON shape.
func (sub CompletedSubmission) Document() ProjectDocument {
	return ProjectDocument{
		ID: strconv.FormatInt(sub.UserID, 10),
		Config: DocumentConfig{
			Ticker:   sub.Ticker,
			FDV:      sub.FDV,
			DataRoom: sub.DataRoom,
		},
		Info: DocumentInfo{
			Name:        sub.ProjectName,
			Description: sub.Description,
			Logo:        sub.ProjectPicture,
			TokenLogo:   sub.TokenPicture,
			Website:     sub.WebsiteLink,
			Community:   sub.CommunityLink,
			XAccount:    sub.XLink,
			Sector:      sub.Sector,
			Chain: DocumentChain{
				Name: sub.Chain,
			},
			Curator: DocumentCurator{
				Handle:   sub.TwitterUsername,
				Verified: sub.TwitterUsername != "",
			},
			Tiers: []DocumentTier{},
			Timeline: []DocumentPhase{
				{Name: "TGE", Date: sub.TGEDate},
			},
		},
	}
}
