// File: internal/application/handlers_test.go
package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/repository"
)

func placeInput(name string, hints ...string) HandlerInput {
	return HandlerInput{
		Request: testRequest(name),
		Session: &model.Session{ID: "sess-1"},
		Decision: &model.Classification{
			Type: model.ContentTypePlaceName,
			Extracted: model.ExtractedData{
				ContentType:   model.ContentTypePlaceName,
				Confidence:    0.9,
				PlaceName:     name,
				LocationHints: hints,
			},
		},
	}
}

func TestPlaceHandler_FormatsTopResult(t *testing.T) {
	var gotQuery model.PlaceQuery
	search := &mockPlaceSearch{
		SearchFunc: func(_ context.Context, q model.PlaceQuery) ([]model.PlaceResult, error) {
			gotQuery = q
			return []model.PlaceResult{
				{
					Name:             "Blue Bottle Coffee",
					FormattedAddress: "300 Webster St, Oakland",
					GoogleMapsURL:    "https://maps.google.com/?cid=1",
					Rating:           4.5,
					UserRatingsTotal: 900,
				},
				{Name: "Other Cafe"},
			}, nil
		},
	}
	h := NewPlaceHandler(search, PlaceHandlerConfig{Language: "en", MaxResults: 5}, nopLogger())

	res := h.Handle(context.Background(), placeInput("Blue Bottle Coffee", "Oakland"))

	if !res.Success {
		t.Fatalf("unexpected failure: %+v", res)
	}
	if gotQuery.SearchText() != "Blue Bottle Coffee, Oakland" {
		t.Errorf("search text = %q", gotQuery.SearchText())
	}
	for _, want := range []string{"<b>Blue Bottle Coffee</b>", "300 Webster St", "4.5", "Open in Maps", "1 more"} {
		if !strings.Contains(res.Message, want) {
			t.Errorf("message missing %q:\n%s", want, res.Message)
		}
	}
}

func TestPlaceHandler_EscapesHTMLInNames(t *testing.T) {
	search := &mockPlaceSearch{
		SearchFunc: func(_ context.Context, _ model.PlaceQuery) ([]model.PlaceResult, error) {
			return []model.PlaceResult{{Name: "Fish & Chips <Best>"}}, nil
		},
	}
	h := NewPlaceHandler(search, PlaceHandlerConfig{}, nopLogger())

	res := h.Handle(context.Background(), placeInput("fish and chips"))
	if !strings.Contains(res.Message, "Fish &amp; Chips &lt;Best&gt;") {
		t.Errorf("name not escaped:\n%s", res.Message)
	}
}

func TestPlaceHandler_NoResultsIsStillSuccess(t *testing.T) {
	search := &mockPlaceSearch{
		SearchFunc: func(_ context.Context, _ model.PlaceQuery) ([]model.PlaceResult, error) {
			return nil, nil
		},
	}
	h := NewPlaceHandler(search, PlaceHandlerConfig{}, nopLogger())

	res := h.Handle(context.Background(), placeInput("Atlantis Mall"))
	if !res.Success {
		t.Fatalf("empty result set is not an error: %+v", res)
	}
	if !strings.Contains(res.Message, "couldn't find") {
		t.Errorf("message = %q", res.Message)
	}
}

func TestPlaceHandler_SearchErrorFails(t *testing.T) {
	search := &mockPlaceSearch{
		SearchFunc: func(_ context.Context, _ model.PlaceQuery) ([]model.PlaceResult, error) {
			return nil, errors.New("quota exceeded")
		},
	}
	h := NewPlaceHandler(search, PlaceHandlerConfig{}, nopLogger())

	res := h.Handle(context.Background(), placeInput("somewhere"))
	if res.Success {
		t.Fatal("search error must fail the handler")
	}
	if res.ErrorCode != "place_search_failed" {
		t.Errorf("error code = %q", res.ErrorCode)
	}
	if res.Message == "" {
		t.Error("user must still get a message on failure")
	}
}

func TestPlaceHandler_NilAdapter(t *testing.T) {
	h := NewPlaceHandler(nil, PlaceHandlerConfig{}, nopLogger())

	res := h.Handle(context.Background(), placeInput("anywhere"))
	if res.Success || res.ErrorCode != "place_search_unavailable" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestConversationHandler_RespondsWithTranscript(t *testing.T) {
	var gotTranscript string
	responder := &mockResponder{
		RespondFunc: func(_ context.Context, text, transcript string) (string, error) {
			gotTranscript = transcript
			return "Sure, " + text, nil
		},
	}
	memory := &mockMemory{Transcript: "User: earlier question"}
	h := NewConversationHandler(responder, memory, nopLogger())

	res := h.Handle(context.Background(), HandlerInput{
		Request:  testRequest("thanks!"),
		Context:  &model.ConversationContext{SessionID: "s", Messages: []model.MemoryEntry{{}}},
		Decision: model.FallbackClassification("thanks!", 0.8, "smalltalk"),
	})

	if !res.Success || res.Message != "Sure, thanks!" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if gotTranscript != "User: earlier question" {
		t.Errorf("transcript = %q", gotTranscript)
	}
}

func TestConversationHandler_FallsBackOnLLMError(t *testing.T) {
	responder := &mockResponder{
		RespondFunc: func(_ context.Context, _, _ string) (string, error) {
			return "", errors.New("model overloaded")
		},
	}
	h := NewConversationHandler(responder, &mockMemory{}, nopLogger())

	res := h.Handle(context.Background(), HandlerInput{
		Request:  testRequest("hello"),
		Decision: model.FallbackClassification("hello", 0.3, "general"),
	})

	if res.Success {
		t.Error("LLM failure must be visible in the result")
	}
	if res.Message != cannedConversationReply {
		t.Errorf("message = %q, want the canned reply", res.Message)
	}
}

func TestLinkHandler_EnqueuesNotifyJob(t *testing.T) {
	var inserted *model.Job
	jobs := &mockJobRepo{
		InsertFunc: func(_ context.Context, _ repository.Tx, job *model.Job) error {
			job.ID = "job-1"
			inserted = job
			return nil
		},
	}
	h := NewLinkHandler(model.ContentTypeInstagramLink, jobs, nopLogger())

	res := h.Handle(context.Background(), HandlerInput{
		Request: testRequest("https://instagram.com/p/abc"),
		Session: &model.Session{ID: "sess-1"},
		Decision: &model.Classification{
			Type: model.ContentTypeInstagramLink,
			Extracted: model.ExtractedData{
				ContentType:   model.ContentTypeInstagramLink,
				URL:           "https://instagram.com/p/abc",
				LinkContentID: "abc",
				LinkType:      "post",
			},
		},
	})

	if !res.Success {
		t.Fatalf("unexpected failure: %+v", res)
	}
	if len(res.JobsCreated) != 1 || res.JobsCreated[0] != "job-1" {
		t.Errorf("jobs created = %v", res.JobsCreated)
	}
	if inserted.Type != model.JobTypeNotifyUser {
		t.Errorf("job type = %q", inserted.Type)
	}
	if inserted.SessionID != "sess-1" || inserted.ChatID != "c-1" {
		t.Errorf("job routing fields: %+v", inserted)
	}
	if inserted.Payload["platform"] != "telegram" {
		t.Errorf("job payload platform = %v", inserted.Payload["platform"])
	}
}

func TestLinkHandler_EnqueueFailureStillAcks(t *testing.T) {
	jobs := &mockJobRepo{
		InsertFunc: func(_ context.Context, _ repository.Tx, _ *model.Job) error {
			return errors.New("insert failed")
		},
	}
	h := NewLinkHandler(model.ContentTypeTikTokLink, jobs, nopLogger())

	res := h.Handle(context.Background(), HandlerInput{
		Request: testRequest("https://tiktok.com/@x/video/1"),
		Decision: &model.Classification{
			Type:      model.ContentTypeTikTokLink,
			Extracted: model.ExtractedData{ContentType: model.ContentTypeTikTokLink, URL: "https://tiktok.com/@x/video/1"},
		},
	})

	if !res.Success {
		t.Fatal("the user-facing ack must not depend on the follow-up job")
	}
	if len(res.JobsCreated) != 0 {
		t.Errorf("jobs created = %v", res.JobsCreated)
	}
	if !strings.Contains(res.Message, "TikTok") {
		t.Errorf("message = %q", res.Message)
	}
}

func TestOtherLinkHandler_EchoesDomain(t *testing.T) {
	h := NewOtherLinkHandler()

	res := h.Handle(context.Background(), HandlerInput{
		Request: testRequest("https://example.com/article"),
		Decision: &model.Classification{
			Type:      model.ContentTypeOtherLink,
			Extracted: model.ExtractedData{ContentType: model.ContentTypeOtherLink, URL: "https://example.com/article", LinkDomain: "example.com"},
		},
	})

	if !res.Success {
		t.Fatalf("unexpected failure: %+v", res)
	}
	if !strings.Contains(res.Message, "example.com") {
		t.Errorf("message = %q", res.Message)
	}
}
