package service

import (
	"context"
	"errors"
	"fmt"

	"ai-coaching-be/internal/constant"
	"ai-coaching-be/internal/dto"
	"ai-coaching-be/internal/entity"
	"ai-coaching-be/internal/pkg/serverutils"
	"ai-coaching-be/pkg/extraction"
	"ai-coaching-be/pkg/genai/fallback"
	"ai-coaching-be/pkg/genai/normalize"
)

// AnalyzeCv extracts the résumé text, derives the candidate profile, and opens
// phase 0. Replaying the upload after a profile exists returns the stored
// profile unchanged.
func (s *diagnosticService) AnalyzeCv(ctx context.Context, email, origin, mediaType string, data []byte) (*dto.AnalyzeCvResponse, error) {
	session, unlock, err := s.begin(ctx, email, origin)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if p0 := session.Service1.Phase0; p0 != nil {
		return &dto.AnalyzeCvResponse{
			Profile:            p0.Profile,
			InitialObservation: p0.InitialObservation,
			Source:             p0.ProfileSource,
		}, nil
	}

	maxBytes := s.cfg.Ai.MaxUploadMB * 1024 * 1024
	if len(data) == 0 {
		return nil, serverutils.ErrValidation("no resume file received")
	}
	if len(data) > maxBytes {
		return nil, serverutils.ErrValidation(fmt.Sprintf("resume file exceeds the %d MB limit", s.cfg.Ai.MaxUploadMB))
	}

	cvText, err := extraction.ExtractText(data, mediaType)
	if err != nil {
		if errors.Is(err, extraction.ErrUnsupportedFormat) {
			return nil, serverutils.ErrValidation("unsupported resume format, send a PDF or DOCX file")
		}
		return nil, serverutils.ErrValidation("the resume file could not be read")
	}
	if cvText == "" {
		return nil, serverutils.ErrValidation("the resume contains no extractable text")
	}

	var profile entity.Profile
	var observation string
	userPrompt := fmt.Sprintf("Locale: %s\n\nResume text:\n%s", localeLabel(session.Locale), cvText)

	source, err := s.pipeline.Generate(ctx, session, "phase0", "profile_extraction",
		constant.ProfileExtractionSystemPrompt, userPrompt, constant.TempAnalytical,
		func(raw string) error {
			p, obs, parseErr := normalize.Profile(raw)
			if parseErr != nil {
				return parseErr
			}
			profile, observation = p, obs
			return nil
		})
	if err != nil {
		return nil, err
	}
	if source == entity.SourceFallback {
		profile, observation = fallback.Profile(cvText)
	}

	session.Service1.Phase0 = &entity.Phase0{
		CvText:             cvText,
		Profile:            profile,
		InitialObservation: observation,
		Interview: entity.Interview{
			History: []entity.InterviewEntry{},
			Status:  constant.InterviewStatusReady,
		},
		ProfileSource: source,
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	return &dto.AnalyzeCvResponse{
		Profile:            profile,
		InitialObservation: observation,
		Source:             source,
	}, nil
}

// StartInterview issues the first interview question. When a question is
// already pending it is re-served verbatim so a reloaded client resumes
// exactly where it stopped.
func (s *diagnosticService) StartInterview(ctx context.Context, email, origin string) (*dto.InterviewQuestionResponse, error) {
	session, unlock, err := s.begin(ctx, email, origin)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p0 := session.Service1.Phase0
	if p0 == nil {
		return nil, serverutils.ErrNotReady("analyze the resume before starting the interview")
	}

	switch p0.Interview.Status {
	case constant.InterviewStatusCompleted:
		return interviewResponse(p0), nil
	case constant.InterviewStatusInProgress:
		if p0.Interview.CurrentQuestion != nil {
			return interviewResponse(p0), nil
		}
	}

	question, err := s.nextQuestion(ctx, session, p0)
	if err != nil {
		return nil, err
	}

	p0.Interview.CurrentQuestion = question
	p0.Interview.Status = constant.InterviewStatusInProgress
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return interviewResponse(p0), nil
}

// AnswerInterview records the answer to the pending question and either issues
// the next question or, after the fifth answer, closes the interview with the
// cadrage note.
func (s *diagnosticService) AnswerInterview(ctx context.Context, req dto.InterviewAnswerRequest, origin string) (*dto.InterviewQuestionResponse, error) {
	session, unlock, err := s.begin(ctx, req.Email, origin)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p0 := session.Service1.Phase0
	if p0 == nil || p0.Interview.Status == constant.InterviewStatusReady {
		return nil, serverutils.ErrNotReady("start the interview before answering")
	}
	if p0.Interview.Status == constant.InterviewStatusCompleted {
		return interviewResponse(p0), nil
	}

	pending := p0.Interview.CurrentQuestion
	if pending == nil {
		return nil, serverutils.ErrNotReady("no interview question is pending")
	}
	if pending.Id != req.QuestionId {
		return nil, serverutils.ErrConflict("the question id does not match the pending question")
	}

	answerText := ""
	for _, opt := range pending.Options {
		if opt.Key == req.SelectedKey {
			answerText = opt.Label
			break
		}
	}
	if answerText == "" {
		return nil, serverutils.ErrValidation("selected key is not one of the question options")
	}

	p0.Interview.History = append(p0.Interview.History, entity.InterviewEntry{
		QuestionId:  pending.Id,
		Question:    pending.Text,
		SelectedKey: req.SelectedKey,
		AnswerText:  answerText,
	})
	p0.Interview.QuestionCount++
	p0.Interview.CurrentQuestion = nil

	if p0.Interview.QuestionCount >= constant.InterviewQuestionTotal {
		if err := s.closeInterview(ctx, session, p0); err != nil {
			return nil, err
		}
	} else {
		question, err := s.nextQuestion(ctx, session, p0)
		if err != nil {
			return nil, err
		}
		p0.Interview.CurrentQuestion = question
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	if p0.Interview.Status == constant.InterviewStatusCompleted {
		s.pipeline.phaseCompleted(session, 0)
	}
	return interviewResponse(p0), nil
}

func (s *diagnosticService) nextQuestion(ctx context.Context, session *entity.DiagnosticSession, p0 *entity.Phase0) (*entity.Question, error) {
	index := p0.Interview.QuestionCount
	userPrompt := fmt.Sprintf(
		"Locale: %s\nQuestion number: %d of %d\n\nCandidate profile:\n%s\n\nInitial observation: %s\n\nPrevious answers:\n%s",
		localeLabel(session.Locale), index+1, constant.InterviewQuestionTotal,
		mustJSON(p0.Profile), p0.InitialObservation, mustJSON(p0.Interview.History),
	)

	var question entity.Question
	source, err := s.pipeline.Generate(ctx, session, "phase0", "interview_question",
		constant.InterviewQuestionSystemPrompt, userPrompt, constant.TempGenerative,
		func(raw string) error {
			q, parseErr := normalize.Question(raw)
			if parseErr != nil {
				return parseErr
			}
			question = q
			return nil
		})
	if err != nil {
		return nil, err
	}
	if source == entity.SourceFallback {
		question = fallback.Question(p0.Profile, index)
	}

	// Ids are assigned server-side, in order, so history never repeats one.
	question.Id = fmt.Sprintf("q%d", index+1)
	return &question, nil
}

func (s *diagnosticService) closeInterview(ctx context.Context, session *entity.DiagnosticSession, p0 *entity.Phase0) error {
	userPrompt := fmt.Sprintf(
		"Locale: %s\n\nCandidate profile:\n%s\n\nInitial observation: %s\n\nInterview answers:\n%s",
		localeLabel(session.Locale), mustJSON(p0.Profile), p0.InitialObservation, mustJSON(p0.Interview.History),
	)

	var note string
	source, err := s.pipeline.Generate(ctx, session, "phase0", "cadrage_note",
		constant.CadrageNoteSystemPrompt, userPrompt, constant.TempAnalytical,
		func(raw string) error {
			n, parseErr := normalize.MarkdownField(raw, "cadrageNote")
			if parseErr != nil {
				return parseErr
			}
			note = n
			return nil
		})
	if err != nil {
		return err
	}
	if source == entity.SourceFallback {
		note = fallback.CadrageNote(p0.Profile, p0.Interview.History)
	}

	p0.CadrageNote = note
	p0.CadrageSource = source
	p0.Interview.Status = constant.InterviewStatusCompleted
	return nil
}

func interviewResponse(p0 *entity.Phase0) *dto.InterviewQuestionResponse {
	resp := &dto.InterviewQuestionResponse{
		Question:      p0.Interview.CurrentQuestion,
		QuestionCount: p0.Interview.QuestionCount,
		Status:        p0.Interview.Status,
	}
	if p0.Interview.Status == constant.InterviewStatusCompleted {
		resp.CadrageNote = p0.CadrageNote
	}
	return resp
}
