package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/colonyops/tray/internal/core/notify"
	"github.com/colonyops/tray/internal/core/styles"
)

// Compose holds the values collected by the compose form.
type Compose struct {
	Kind     notify.Kind
	Message  string
	Duration string
}

// NewCompose returns a compose draft prefilled with defaults.
func NewCompose(defaultDuration time.Duration) *Compose {
	return &Compose{
		Kind:     notify.KindInfo,
		Duration: defaultDuration.String(),
	}
}

// Form builds the huh form that edits c in place.
func (c *Compose) Form() *huh.Form {
	options := make([]huh.Option[notify.Kind], 0, len(notify.Kinds))
	for _, k := range notify.Kinds {
		d := notify.Describe(k)
		options = append(options, huh.NewOption(d.Icon+" "+string(k), k))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[notify.Kind]().
				Title("Kind").
				Options(options...).
				Value(&c.Kind),
			huh.NewInput().
				Title("Message").
				Validate(validateMessage).
				Value(&c.Message),
			huh.NewInput().
				Title("Duration").
				Description("Milliseconds or a duration like 3s. 0 keeps it until dismissed.").
				Validate(validateDuration).
				Value(&c.Duration),
		),
	).WithTheme(styles.FormTheme())
}

// Run shows the form. A cancelled form returns ok=false and no error.
func (c *Compose) Run() (ok bool, err error) {
	if err := c.Form().Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("compose form: %w", err)
	}
	return true, nil
}

// Post sends the composed notification to mgr.
func (c *Compose) Post(mgr *notify.Manager) notify.ID {
	var opts []notify.Option
	if d, ok := notify.ParseDuration(c.Duration); ok {
		opts = append(opts, notify.WithDuration(d))
	}
	return mgr.NotifyKind(c.Kind, strings.TrimSpace(c.Message), opts...)
}

func validateMessage(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("message is required")
	}
	return nil
}

func validateDuration(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, ok := notify.ParseDuration(s); !ok {
		return fmt.Errorf("%q is not a duration", s)
	}
	return nil
}
