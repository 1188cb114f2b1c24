// Command subscribe submits an email address to a running site from the
// terminal, using the same form controller the landing page mirrors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"rebateforge-site/internal/subscribeform"
)

func main() {
	endpoint := flag.String("endpoint", "http://localhost:8080/api/subscribe", "subscribe endpoint URL")
	email := flag.String("email", "", "email address (prompted for when empty)")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Parse()

	if err := run(*endpoint, *email, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(endpoint, email string, timeout time.Duration) error {
	form := subscribeform.NewController(endpoint, &http.Client{Timeout: timeout})
	form.OnChange(render)

	if email == "" {
		var err error
		email, err = prompt()
		if err != nil {
			return err
		}
	}
	form.SetEmail(email)

	snap, err := form.Submit(context.Background())
	if errors.Is(err, subscribeform.ErrEmailRequired) || errors.Is(err, subscribeform.ErrInvalidEmail) {
		return err
	}
	if snap.Status == subscribeform.StatusError {
		return errors.New(snap.ErrorMessage)
	}
	return nil
}

func prompt() (string, error) {
	var out string
	err := survey.AskOne(&survey.Input{
		Message: "Enter your email",
		Help:    "We will let you know when RebateForge opens up.",
	}, &out, survey.WithValidator(survey.Required), survey.WithValidator(func(ans interface{}) error {
		s, _ := ans.(string)
		return subscribeform.ValidateEmail(s)
	}))
	if errors.Is(err, terminal.InterruptErr) {
		return "", errors.New("cancelled")
	}
	return out, err
}

func render(s subscribeform.Snapshot) {
	v := s.View()
	switch s.Status {
	case subscribeform.StatusLoading:
		fmt.Println(v.ButtonLabel)
	case subscribeform.StatusSuccess:
		fmt.Println(v.Success)
	case subscribeform.StatusError:
		fmt.Println(v.Error)
	}
}
