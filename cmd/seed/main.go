// Seeds a demo survey exercising relevance logic, piping, randomization
// and quota rules against a local Mongo instance.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyd/config"
	"surveyd/internal/model"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)

	surveyID := uuid.New().String()
	survey := model.Survey{
		ID:     surveyID,
		Title:  "Streaming Habits 2026",
		Desc:   "Demo survey for local development.",
		Status: model.SurveyActive,
		Settings: model.SurveySettings{
			ShowProgressBar:         true,
			AllowBackwardNavigation: true,
			WelcomeEnabled:          true,
			WelcomeTitle:            "Welcome!",
			WelcomeMessage:          "This survey takes about three minutes.",
			WelcomeButtonText:       "Start",
			EndTitle:                "Thank you",
			EndMessage:              "Your answers were recorded.",
			ScreenoutMessage:        "Unfortunately you do not qualify for this survey.",
			QuotaFullMessage:        "We already have enough responses in your group.",
		},
		Groups: []model.QuestionGroup{
			{
				ID:         uuid.New().String(),
				Title:      "About you",
				OrderIndex: 0,
				Questions: []model.Question{
					{
						ID:         uuid.New().String(),
						Code:       "age",
						Text:       "How old are you?",
						Type:       model.TypeNumerical,
						OrderIndex: 0,
						Settings: model.QuestionSettings{
							Mandatory: true,
							MinValue:  f(16),
							MaxValue:  f(99),
						},
					},
					{
						ID:         uuid.New().String(),
						Code:       "streams",
						Text:       "Do you use any video streaming services?",
						Type:       model.TypeYesNo,
						OrderIndex: 1,
						Settings:   model.QuestionSettings{Mandatory: true},
					},
				},
			},
			{
				ID:             uuid.New().String(),
				Title:          "Your services",
				OrderIndex:     1,
				RelevanceLogic: "streams == 'Y'",
				Questions: []model.Question{
					{
						ID:         uuid.New().String(),
						Code:       "services",
						Text:       "Which services do you currently pay for?",
						Type:       model.TypeMultipleChoiceMultiple,
						OrderIndex: 0,
						Settings: model.QuestionSettings{
							Mandatory:        true,
							MinAnswers:       1,
							RandomizeAnswers: true,
						},
						Options: []model.AnswerOption{
							{Code: "NF", Text: "Netflix", OrderIndex: 0},
							{Code: "DP", Text: "Disney+", OrderIndex: 1},
							{Code: "AP", Text: "Prime Video", OrderIndex: 2},
							{Code: "HM", Text: "HBO Max", OrderIndex: 3},
							{Code: "OT", Text: "Other", OrderIndex: 4},
						},
					},
					{
						ID:             uuid.New().String(),
						Code:           "satisfaction",
						Text:           "You are {age} years old. How satisfied are you overall?",
						Type:           model.TypeFivePointChoice,
						OrderIndex:     1,
						RelevanceLogic: "count(services) >= 1",
						Settings:       model.QuestionSettings{Mandatory: true},
					},
					{
						ID:         uuid.New().String(),
						Code:       "usage",
						Text:       "How often do you watch on each device?",
						Type:       model.TypeArray5Point,
						OrderIndex: 2,
						Settings: model.QuestionSettings{
							Mandatory:             true,
							RandomizeSubquestions: true,
						},
						Subquestions: []model.Subquestion{
							{Code: "tv", Text: "Television", OrderIndex: 0},
							{Code: "phone", Text: "Phone", OrderIndex: 1},
							{Code: "laptop", Text: "Laptop", OrderIndex: 2},
						},
					},
				},
			},
			{
				ID:         uuid.New().String(),
				Title:      "Wrap up",
				OrderIndex: 2,
				Questions: []model.Question{
					{
						ID:         uuid.New().String(),
						Code:       "email",
						Text:       "Leave an email for the prize draw (optional).",
						Type:       model.TypeText,
						OrderIndex: 0,
						Settings: model.QuestionSettings{
							ValidationRegex:   `^[^@\s]+@[^@\s]+\.[^@\s]+$`,
							ValidationMessage: "Please enter a valid email address.",
						},
					},
				},
			},
		},
	}

	if _, err := db.Collection("surveys").InsertOne(ctx, survey); err != nil {
		log.Fatalf("Failed to insert survey: %v", err)
	}

	quotas := []interface{}{
		model.QuotaRule{
			ID:         uuid.New().String(),
			SurveyID:   surveyID,
			Name:       "non-streamers",
			OrderIndex: 0,
			Conditions: []model.QuotaCondition{
				{QuestionCode: "streams", Operator: model.QuotaEquals, Value: "N"},
			},
			Limit:  50,
			Action: model.QuotaScreenout,
			Active: true,
		},
		model.QuotaRule{
			ID:         uuid.New().String(),
			SurveyID:   surveyID,
			Name:       "young-heavy-streamers",
			OrderIndex: 1,
			Conditions: []model.QuotaCondition{
				{QuestionCode: "age", Operator: model.QuotaLess, Value: "30"},
				{QuestionCode: "services", Operator: model.QuotaIn, Values: []string{"NF", "DP"}},
			},
			Limit:  200,
			Action: model.QuotaStop,
			Active: true,
		},
	}
	if _, err := db.Collection("quota_rules").InsertMany(ctx, quotas); err != nil {
		log.Fatalf("Failed to insert quota rules: %v", err)
	}

	fmt.Printf("Seeded survey %s with %d groups and %d quota rules\n", surveyID, len(survey.Groups), len(quotas))
}

func f(v float64) *float64 { return &v }
