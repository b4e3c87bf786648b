package service

import (
	"context"
	"fmt"
	"strings"

	"ai-coaching-be/internal/dto"
	"ai-coaching-be/internal/entity"
	"ai-coaching-be/internal/pkg/logger"
	"ai-coaching-be/internal/pkg/mailer"
	"ai-coaching-be/internal/pkg/serverutils"
)

// IExportService bundles every artifact of a session into one markdown
// document, optionally mailed to the participant.
type IExportService interface {
	Export(ctx context.Context, req dto.ExportRequest, origin string) (*dto.ExportResponse, error)
}

type exportService struct {
	guard  ISessionGuard
	mailer mailer.IEmailService
	log    logger.ILogger
}

func NewExportService(guard ISessionGuard, emailService mailer.IEmailService, log logger.ILogger) IExportService {
	return &exportService{
		guard:  guard,
		mailer: emailService,
		log:    log,
	}
}

func (s *exportService) Export(ctx context.Context, req dto.ExportRequest, origin string) (*dto.ExportResponse, error) {
	session, err := s.guard.Authorize(ctx, req.Email, origin)
	if err != nil {
		return nil, err
	}
	if session.Service1.Phase0 == nil {
		return nil, serverutils.ErrNotReady("nothing to export yet")
	}

	markdown := BundleMarkdown(session)

	emailed := false
	if req.SendEmail {
		if s.mailer == nil {
			return nil, serverutils.ErrNotConfigured("email delivery is not configured")
		}
		if err := s.mailer.SendDossier(session.Email, session.DisplayName, markdown); err != nil {
			s.log.Error("Export", "Dossier email failed", map[string]interface{}{
				"email": session.Email,
				"error": err.Error(),
			})
			return nil, serverutils.ErrTransport("the dossier email could not be sent", err)
		}
		emailed = true
		s.log.Info("Export", "Dossier emailed", map[string]interface{}{
			"email": session.Email,
		})
	}

	return &dto.ExportResponse{Markdown: markdown, Emailed: emailed}, nil
}

// BundleMarkdown concatenates every artifact the session holds so far, in
// phase order. Absent phases are skipped.
func BundleMarkdown(session *entity.DiagnosticSession) string {
	s1 := session.Service1
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Diagnostic — %s\n\n", session.DisplayName))

	if p0 := s1.Phase0; p0 != nil {
		sb.WriteString("## Profil\n\n")
		sb.WriteString(fmt.Sprintf("- **Nom** : %s\n- **Rôle déclaré** : %s\n- **Expérience** : %d ans\n- **Compétences** : %s\n\n%s\n\n",
			p0.Profile.Name, p0.Profile.CurrentRole, p0.Profile.YearsExperience,
			strings.Join(p0.Profile.Skills, ", "), p0.Profile.Summary))
		if p0.CadrageNote != "" {
			sb.WriteString(p0.CadrageNote + "\n\n")
		}
	}
	if p1 := s1.Phase1; p1 != nil && p1.ReportMarkdown != "" {
		sb.WriteString(p1.ReportMarkdown + "\n\n")
	}
	if p2 := s1.Phase2; p2 != nil && p2.ReportMarkdown != "" {
		sb.WriteString(p2.ReportMarkdown + "\n\n")
	}
	if p3 := s1.Phase3; p3 != nil && p3.SelectedGrowthPath != "" {
		sb.WriteString(fmt.Sprintf("## Trajectoire\n\nVoie retenue : %s\n\n", p3.SelectedGrowthPath))
	}
	if p4 := s1.Phase4; p4 != nil {
		sb.WriteString(p4.PositioningNote + "\n\n" + p4.PlanningDoc + "\n\n### Feuille de route\n\n")
		for _, month := range p4.Roadmap {
			sb.WriteString(fmt.Sprintf("**Mois %d — %s**\n\n", month.Month, month.Theme))
			for _, task := range month.Tasks {
				check := " "
				if task.Done {
					check = "x"
				}
				sb.WriteString(fmt.Sprintf("- [%s] %s\n", check, task.Text))
			}
			sb.WriteString("\n")
		}
	}
	if p5 := s1.Phase5; p5 != nil {
		if p5.SelfMatchAnalysis != "" {
			sb.WriteString(p5.SelfMatchAnalysis + "\n\n")
		}
		if p5.Evaluation != nil {
			sb.WriteString(fmt.Sprintf("## Évaluation finale\n\n- **Score** : %d/100\n- **Verdict** : %s\n\n%s\n\n",
				p5.Evaluation.Score, p5.Evaluation.Verdict, p5.Evaluation.Advice))
		}
		if p5.ExpertDossierFR != "" {
			sb.WriteString(p5.ExpertDossierFR + "\n")
		}
	}

	return sb.String()
}
