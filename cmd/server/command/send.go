package command

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ricirt/sms-engine/internal/domain"
	"github.com/ricirt/sms-engine/internal/service"
)

// Send dispatches messages straight from the command line and prints the
// result as JSON.
type Send struct {
	App *App
	Out io.Writer
}

func (cmd Send) Command() *cobra.Command {
	send := &cobra.Command{
		Use:   "send",
		Short: "send SMS without running the server",
	}
	send.AddCommand(cmd.single(), cmd.bulk(), cmd.dynamic())
	return send
}

func (cmd Send) single() *cobra.Command {
	var req domain.SingleRequest
	c := &cobra.Command{
		Use:   "single",
		Short: "send one message",
		RunE: func(c *cobra.Command, _ []string) error {
			return cmd.run(c.Context(), func(ctx context.Context, svc *service.SMSService) (any, error) {
				res, err := svc.SendSingle(ctx, req)
				if res != nil {
					return res, err
				}
				return nil, err
			})
		},
	}
	c.Flags().StringVar(&req.Recipient, "to", "", "recipient MSISDN")
	c.Flags().StringVar(&req.Body, "body", "", "message text")
	c.Flags().StringVar(&req.ClientReference, "ref", "", "client reference echoed in the result")
	return c
}

func (cmd Send) bulk() *cobra.Command {
	var (
		to   []string
		body string
	)
	c := &cobra.Command{
		Use:   "bulk",
		Short: "send one text to many recipients",
		RunE: func(c *cobra.Command, _ []string) error {
			req := domain.BulkRequest{Body: body, Recipients: make([]domain.BulkRecipient, len(to))}
			for i, r := range to {
				req.Recipients[i] = domain.BulkRecipient{Recipient: r}
			}
			return cmd.run(c.Context(), func(ctx context.Context, svc *service.SMSService) (any, error) {
				res, err := svc.SendBulk(ctx, req)
				if err != nil {
					return nil, err
				}
				return res, nil
			})
		},
	}
	c.Flags().StringSliceVar(&to, "to", nil, "recipient MSISDNs, comma separated or repeated")
	c.Flags().StringVar(&body, "body", "", "message text")
	return c
}

func (cmd Send) dynamic() *cobra.Command {
	var pairs []string
	c := &cobra.Command{
		Use:   "dynamic",
		Short: "send a distinct text per recipient",
		RunE: func(c *cobra.Command, _ []string) error {
			req, err := parseMessages(pairs)
			if err != nil {
				return err
			}
			return cmd.run(c.Context(), func(ctx context.Context, svc *service.SMSService) (any, error) {
				res, err := svc.SendDynamic(ctx, req)
				if err != nil {
					return nil, err
				}
				return res, nil
			})
		},
	}
	c.Flags().StringArrayVar(&pairs, "message", nil, "MSISDN=text, repeat per message")
	return c
}

// run prints whatever result send produced, then returns its error so the
// process exits non-zero.
func (cmd Send) run(ctx context.Context, send func(context.Context, *service.SMSService) (any, error)) error {
	cfg, logger, err := cmd.App.load(os.Stderr)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	res, err := send(ctx, newService(cfg, logger, service.MetricHooks{}))
	if res != nil {
		enc := json.NewEncoder(cmd.Out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(res); encErr != nil {
			return errors.Wrap(encErr, "write result")
		}
	}
	return err
}

func parseMessages(pairs []string) (domain.DynamicRequest, error) {
	req := domain.DynamicRequest{Messages: make([]domain.DynamicMessage, 0, len(pairs))}
	for _, p := range pairs {
		to, text, ok := strings.Cut(p, "=")
		if !ok {
			return req, errors.Errorf("message %q is not in MSISDN=text form", p)
		}
		req.Messages = append(req.Messages, domain.DynamicMessage{Recipient: to, Body: text})
	}
	return req, nil
}
