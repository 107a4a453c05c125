package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/hospitalms/hospital-api/internal/config"
	"github.com/hospitalms/hospital-api/internal/model"
	"github.com/hospitalms/hospital-api/pkg/logger"
)

// Service sends operational notifications.
type Service interface {
	NotifyDoctorDeactivated(ctx context.Context, doctor *model.Doctor)
}

type smtpService struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
	logger *logger.Logger
}

func NewSMTPService(cfg config.SMTPConfig, log *logger.Logger) Service {
	return &smtpService{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: log,
	}
}

// NotifyDoctorDeactivated mails the admin contact when a doctor is
// auto-deactivated. Delivery failures are logged, never propagated:
// the treatment write has already committed.
func (s *smtpService) NotifyDoctorDeactivated(_ context.Context, doctor *model.Doctor) {
	if s.cfg.AdminTo == "" {
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", s.cfg.AdminTo)
	m.SetHeader("Subject", fmt.Sprintf("Doctor %s deactivated", doctor.Name))
	m.SetBody("text/plain", fmt.Sprintf(
		"Doctor %s (%s) was deactivated after %d incorrect treatments. Manual reactivation is required.",
		doctor.Name, doctor.ID, doctor.IncorrectTreatments,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error(err, "failed to send deactivation notice", "doctor_id", doctor.ID.String())
	}
}
