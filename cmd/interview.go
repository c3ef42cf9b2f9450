package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spigell/recruitai/internal/admin"
	"github.com/spigell/recruitai/internal/failure"
	"github.com/spigell/recruitai/internal/interview"
	"github.com/spigell/recruitai/internal/job"
	"github.com/spigell/recruitai/internal/locale"
	"github.com/spigell/recruitai/internal/location"
	"github.com/spigell/recruitai/internal/report"
	"github.com/spigell/recruitai/internal/resume"
	"github.com/spigell/recruitai/internal/utils"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptGenerateReport = "Generate report"
	PromptExit           = "Exit"
)

var errExit = errors.New("exit requested")

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run an interview session in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		runInterview(cmd)
	},
}

func init() {
	rootCmd.AddCommand(interviewCmd)

	interviewCmd.Flags().String("resume-file", "", "candidate resume (pdf, txt, image or docx)")
	interviewCmd.Flags().Bool("resume-as-text", false, "extract the resume text instead of attaching the file")
	interviewCmd.Flags().String("export-dir", "", "directory for exported reports")

	viper.BindPFlag("export-dir", interviewCmd.Flags().Lookup("export-dir"))
}

func runInterview(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// the dialogue owns stdout
	logger, err := newLogger("stderr")
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config.Job == nil {
		logger.Fatal("job section is required in the configuration")
	}

	if path, _ := cmd.Flags().GetString("resume-file"); path != "" {
		asText, _ := cmd.Flags().GetBool("resume-as-text")
		if err := attachResume(config.Job, path, asText); err != nil {
			logger.Fatal("loading resume", zap.Error(err), zap.String("file", path))
		}
	}

	jobCfg, err := buildJob(config)
	if err != nil {
		logger.Fatal("validating job configuration", zap.Error(err))
	}

	ledger, release, err := newLedger(ctx, config.Quota, logger)
	if err != nil {
		logger.Fatal("creating quota ledger", zap.Error(err))
	}
	defer release()

	client, err := newGeminiClient(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("creating gemini client", zap.Error(err))
	}

	gate, err := newGate(config.Admin, logger)
	if err != nil {
		logger.Fatal("loading admin secret", zap.Error(err))
	}

	reports, err := report.NewGenerator(client, ledger, logger)
	if err != nil {
		logger.Fatal("creating report generator", zap.Error(err))
	}

	text := locale.For(jobCfg.Language)
	out := cmd.OutOrStdout()

	var turns []interview.Turn
	session, err := interview.New(jobCfg, interview.Deps{
		Chat:       client,
		Quota:      ledger,
		Location:   location.NewFetcher(client, ledger, logger),
		Logger:     logger,
		OnComplete: func(t []interview.Turn) { turns = t },
	})
	if err != nil {
		logger.Fatal("creating interview session", zap.Error(err))
	}

	info := buildInfo()
	logger.Info("starting the recruitai interview",
		zap.String("version", info.Version),
		zap.String("commit", info.Revision),
		zap.String("session_id", session.ID()),
	)

	opening, err := session.Initialize(ctx)
	if err != nil {
		if failure.IsQuota(err) {
			printQuota(out, text)
			return
		}
		fmt.Fprintf(out, "%s %s\n", text.InitError, text.Reload)
		logger.Fatal("starting interview", zap.Error(err))
	}
	printTurn(out, text, opening)

	if err := converse(ctx, out, session, text, logger); err != nil {
		if errors.Is(err, errExit) {
			return
		}
		logger.Fatal("interview failed", zap.Error(err))
	}

	fmt.Fprintln(out, text.Completed)
	if err := utils.WaitFor(ctx, config.Interview.ClosingDelay); err != nil {
		return
	}

	if err := reportMenu(ctx, out, jobCfg, turns, reports, gate, config.ExportDir, logger); err != nil && !errors.Is(err, errExit) {
		logger.Fatal("report menu", zap.Error(err))
	}
}

func attachResume(draft *job.Draft, path string, asText bool) error {
	f, err := resume.Load(path)
	if err != nil {
		return err
	}
	return resume.Apply(draft, f, asText)
}

// converse reads candidate answers until the interviewer ends the session.
func converse(ctx context.Context, out io.Writer, session *interview.Orchestrator, text locale.Text, logger *zap.Logger) error {
	answer := promptui.Prompt{Label: text.Placeholder}

	for session.State() == interview.StateActive {
		line, err := answer.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return errExit
			}
			return err
		}

		fmt.Fprintln(out, text.Sending)

		reply, err := session.SendCandidateMessage(ctx, line)
		switch {
		case errors.Is(err, interview.ErrEmptyMessage):
			continue
		case failure.IsQuota(err):
			printQuota(out, text)
			return errExit
		case failure.KindOf(err) == failure.KindTransport:
			logger.Warn("interviewer did not answer", zap.Error(err))
		case err != nil:
			return err
		}

		if reply.Interviewer != nil {
			printTurn(out, text, *reply.Interviewer)
		}
	}

	return nil
}

func reportMenu(ctx context.Context, out io.Writer, cfg *job.Configuration, turns []interview.Turn, reports *report.Generator, gate *admin.Gate, exportDir string, logger *zap.Logger) error {
	text := locale.For(cfg.Language)
	menu := promptui.Select{
		Label: "What next?",
		Items: []string{PromptGenerateReport, PromptExit},
	}

	for {
		_, action, err := menu.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptExit:
			return errExit
		case PromptGenerateReport:
			if !unlock(gate, text) {
				fmt.Fprintln(out, text.AccessDenied)
				continue
			}
			if err := writeReport(ctx, out, cfg, turns, reports, exportDir, logger); err != nil {
				if failure.IsQuota(err) {
					fmt.Fprintln(out, text.QuotaReport)
					continue
				}
				return err
			}
		default:
			return fmt.Errorf("invalid action: %s", action)
		}
	}
}

func unlock(gate *admin.Gate, text locale.Text) bool {
	secret := promptui.Prompt{Label: text.AdminPrompt, Mask: '*'}
	attempt, err := secret.Run()
	if err != nil {
		return false
	}
	return gate.Unlock(attempt)
}

func writeReport(ctx context.Context, out io.Writer, cfg *job.Configuration, turns []interview.Turn, reports *report.Generator, exportDir string, logger *zap.Logger) error {
	rep, err := reports.Generate(ctx, cfg, turns)
	if err != nil {
		return err
	}

	now := time.Now()

	var buf bytes.Buffer
	if err := report.Export(&buf, cfg, rep, turns, now); err != nil {
		return err
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		return err
	}

	if exportDir == "" {
		exportDir = "."
	}
	filename := filepath.Join(exportDir, report.FileName(cfg.JobTitle, now))

	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}

	logger.Info("report exported", zap.String("filename", filename), zap.Bool("degraded", rep.Degraded()))
	return nil
}

func printTurn(out io.Writer, text locale.Text, turn interview.Turn) {
	speaker := text.Candidate
	if turn.Role == interview.RoleInterviewer {
		speaker = text.Interviewer
	}
	fmt.Fprintf(out, "\n[%s] %s\n\n", speaker, turn.Text)
}

func printQuota(out io.Writer, text locale.Text) {
	fmt.Fprintf(out, "%s\n%s\n%s\n", text.QuotaTitle, text.QuotaDesc, text.QuotaAction)
}
