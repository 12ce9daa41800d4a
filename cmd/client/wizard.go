package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/ProfileDesk/internal/client/tracker"
	"github.com/atinyakov/ProfileDesk/internal/completion"
	"github.com/atinyakov/ProfileDesk/internal/models"
)

const wizardHelp = `Available commands:
  help                    show this message
  status                  list wizard steps and their completion
  show [section]          print the whole profile or one section
  step <n|section>        jump to a step
  next / prev             move the cursor (next requires the step to be complete)
  set <section> <json>    save a section, marking its step once it is complete
  mark <n>                mark a step complete locally
  reload                  fetch the profile again
  exit                    leave the wizard`

// SectionSaver persists one section on the server.
type SectionSaver interface {
	SaveSection(ctx context.Context, creds models.Credentials, section models.Section, data any) error
}

// wizard is the interactive onboarding shell around a Tracker.
type wizard struct {
	tracker *tracker.Tracker
	saver   SectionSaver
	creds   models.Credentials
	out     io.Writer
	log     *zap.Logger
}

// run reads commands from in until EOF or "exit".
func (w *wizard) run(ctx context.Context, in io.Reader) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		fmt.Fprint(w.out, "profiledesk> ")
		if !scanner.Scan() {
			return
		}
		if quit := w.exec(ctx, scanner.Text()); quit {
			return
		}
	}
}

// exec runs a single command line and reports whether the shell should stop.
func (w *wizard) exec(ctx context.Context, line string) bool {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "":
	case "help":
		fmt.Fprintln(w.out, wizardHelp)
	case "status":
		w.printStatus()
	case "show":
		w.show(rest)
	case "step":
		idx, ok := w.stepArg(rest)
		if !ok {
			fmt.Fprintln(w.out, "Usage: step <n|section>")
			return false
		}
		w.tracker.SetCurrentStep(idx)
		w.printStatus()
	case "next":
		snap := w.tracker.Snapshot()
		cur := snap.CurrentStep
		switch {
		case cur < 0 || cur >= models.SectionCount:
			fmt.Fprintln(w.out, "Cursor is outside the wizard, use step <n>")
		case !snap.Completed[cur]:
			fmt.Fprintf(w.out, "Complete %s first\n", models.Section(cur))
		case cur == models.SectionCount-1:
			fmt.Fprintln(w.out, "Already at the last step")
		default:
			w.tracker.SetCurrentStep(cur + 1)
			w.printStatus()
		}
	case "prev":
		if cur := w.tracker.CurrentStep(); cur > 0 {
			w.tracker.SetCurrentStep(cur - 1)
		}
		w.printStatus()
	case "set":
		w.set(ctx, rest)
	case "mark":
		idx, err := strconv.Atoi(rest)
		if err != nil {
			fmt.Fprintln(w.out, "Usage: mark <n>")
			return false
		}
		w.tracker.MarkStepComplete(idx)
		w.printStatus()
	case "reload":
		w.tracker.Load(ctx)
		w.printStatus()
	case "exit":
		fmt.Fprintln(w.out, "Bye")
		return true
	default:
		fmt.Fprintln(w.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return false
}

func (w *wizard) printStatus() {
	snap := w.tracker.Snapshot()
	for _, s := range models.Sections() {
		mark := " "
		if snap.Completed[s] {
			mark = "x"
		}
		cursor := "  "
		if int(s) == snap.CurrentStep {
			cursor = "> "
		}
		fmt.Fprintf(w.out, "%s%d [%s] %s\n", cursor, int(s), mark, s)
	}
	fmt.Fprintf(w.out, "%d/%d complete\n", snap.Completed.Count(), models.SectionCount)
}

func (w *wizard) show(name string) {
	rec := w.tracker.ProfileData()
	var v any = rec
	if name != "" {
		section, err := models.ParseSection(name)
		if err != nil {
			fmt.Fprintf(w.out, "Unknown section %q\n", name)
			return
		}
		v = rec.Section(section)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w.out, "Cannot render: %v\n", err)
		return
	}
	fmt.Fprintln(w.out, string(b))
}

func (w *wizard) set(ctx context.Context, args string) {
	name, raw, _ := strings.Cut(args, " ")
	raw = strings.TrimSpace(raw)
	if name == "" || raw == "" {
		fmt.Fprintln(w.out, "Usage: set <section> <json>")
		return
	}
	section, err := models.ParseSection(name)
	if err != nil {
		fmt.Fprintf(w.out, "Unknown section %q\n", name)
		return
	}
	data, err := models.DecodeSection(section, []byte(raw))
	if err != nil {
		fmt.Fprintf(w.out, "Invalid %s data: %v\n", section, err)
		return
	}
	if data == nil {
		fmt.Fprintln(w.out, "Use a non-null value")
		return
	}

	if err := w.saver.SaveSection(ctx, w.creds, section, data); err != nil {
		w.log.Error("section save failed", zap.Stringer("section", section), zap.Error(err))
		fmt.Fprintf(w.out, "Save failed: %v\n", err)
		return
	}
	if err := w.tracker.UpdateProfileSection(section, data); err != nil {
		w.log.Error("local section update failed", zap.Stringer("section", section), zap.Error(err))
		return
	}
	if !completion.Section(w.tracker.ProfileData(), section) {
		fmt.Fprintf(w.out, "Saved %s, but it is still incomplete\n", section)
		return
	}
	w.tracker.MarkStepComplete(int(section))
	fmt.Fprintf(w.out, "Saved %s\n", section)
}

// stepArg accepts a step index or a section name.
func (w *wizard) stepArg(arg string) (int, bool) {
	if arg == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(arg); err == nil {
		return n, true
	}
	section, err := models.ParseSection(arg)
	if err != nil {
		return 0, false
	}
	return int(section), true
}
