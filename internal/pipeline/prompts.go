package pipeline

import (
	"fmt"
	"strings"

	"github.com/copyforge/copyforge/internal/immersion"
	"github.com/copyforge/copyforge/internal/rules"
)

// promptInput is the shared context every phase prompt draws from.
type promptInput struct {
	spec      TaskSpec
	entry     rules.Entry
	factBlock string
	profile   *immersion.Profile
}

const baseSystem = `You write marketing and editorial copy under hard structural rules.
- Obey every limit in the prompt exactly. Limits are not suggestions.
- Never use an em dash or a double hyphen anywhere.
- Plain declarative sentences. No filler, no throat-clearing.
- Respond with the required JSON structure only.`

func (in promptInput) header() string {
	var b strings.Builder
	b.WriteString("TASK\n")
	b.WriteString(fmt.Sprintf("- channel: %s\n", in.spec.Channel))
	b.WriteString(fmt.Sprintf("- audience: %s\n", in.spec.Audience))
	b.WriteString(fmt.Sprintf("- goal: %s\n", in.spec.Goal))
	b.WriteString(fmt.Sprintf("- topic: %s\n", in.spec.Topic))
	if in.spec.Offer != "" {
		b.WriteString(fmt.Sprintf("- offer: %s\n", in.spec.Offer))
	}
	if in.spec.Voice != "" {
		b.WriteString(fmt.Sprintf("- voice: %s\n", in.spec.Voice))
	}
	if len(in.spec.MustInclude) > 0 {
		b.WriteString(fmt.Sprintf("- must include: %s\n", strings.Join(in.spec.MustInclude, "; ")))
	}
	if len(in.spec.Avoid) > 0 {
		b.WriteString(fmt.Sprintf("- avoid: %s\n", strings.Join(in.spec.Avoid, "; ")))
	}
	if in.factBlock != "" {
		b.WriteString("\n")
		b.WriteString(in.factBlock)
	}
	if in.profile != nil {
		b.WriteString("\nNICHE PROFILE\n")
		if len(in.profile.Terminology) > 0 {
			b.WriteString(fmt.Sprintf("- use the niche's own vocabulary: %s\n", strings.Join(in.profile.Terminology, ", ")))
		}
		if len(in.profile.ForbiddenInNiche) > 0 {
			b.WriteString(fmt.Sprintf("- worn out in this niche, never use: %s\n", strings.Join(in.profile.ForbiddenInNiche, ", ")))
		}
		if len(in.profile.VoiceDescriptors) > 0 {
			b.WriteString(fmt.Sprintf("- register: %s\n", strings.Join(in.profile.VoiceDescriptors, ", ")))
		}
	}
	return b.String()
}

func (in promptInput) limits() string {
	var b strings.Builder
	b.WriteString("HARD LIMITS\n")
	target := in.spec.TargetWords
	if target == 0 {
		target = in.entry.TargetWords
	}
	maxTotal := in.spec.MaxWords
	if maxTotal == 0 {
		maxTotal = in.entry.MaxTotalWords
	}
	b.WriteString(fmt.Sprintf("- target length: %d words, hard maximum %d\n", target, maxTotal))
	b.WriteString(fmt.Sprintf("- no sentence over %d words\n", in.entry.MaxSentenceWords))
	b.WriteString(fmt.Sprintf("- at most %d adjectives before any noun\n", in.entry.MaxAdjectivesPerNoun))
	b.WriteString(fmt.Sprintf("- a concrete detail (number or proper noun) at least every %d sentences\n", in.entry.SpecificDetailEveryNSentences))
	b.WriteString("- never open a paragraph with a transition word (however, additionally, because, ...)\n")
	return b.String()
}

func briefPrompt(in promptInput) (string, string) {
	var b strings.Builder
	b.WriteString(in.header())
	b.WriteString("\nWrite the creative brief for this piece.\n")
	b.WriteString("- single_job: the one action or belief shift this piece must cause\n")
	b.WriteString("- proof_lane: which kind of proof carries the argument (numbers, story, authority, demonstration)\n")
	b.WriteString("- stance: the point of view the piece argues from, in one sentence\n")
	return baseSystem, b.String()
}

func architecturePrompt(in promptInput, brief CreativeBrief) (string, string) {
	var b strings.Builder
	b.WriteString(in.header())
	b.WriteString("\nCREATIVE BRIEF\n")
	b.WriteString(fmt.Sprintf("- single job: %s\n- proof lane: %s\n- stance: %s\n", brief.SingleJob, brief.ProofLane, brief.Stance))
	b.WriteString("\nBuild the message architecture.\n")
	b.WriteString("- one primary claim, every supporting claim feeding it\n")
	b.WriteString("- each claim's source must name the input or fact it traces to; no orphan claims\n")
	b.WriteString("- objection handlers for the audience's strongest doubts\n")
	b.WriteString("- proof points drawn only from the supplied material\n")
	return baseSystem, b.String()
}

func beatSheetPrompt(in promptInput, brief CreativeBrief, arch MessageArchitecture, campaignType string) (string, string) {
	var b strings.Builder
	b.WriteString(in.header())
	b.WriteString("\nPRIMARY CLAIM: " + arch.PrimaryClaim.Text + "\n")
	b.WriteString(fmt.Sprintf("SINGLE JOB: %s\n", brief.SingleJob))
	b.WriteString("\nPlan the beat sheet.\n")
	b.WriteString(fmt.Sprintf("- at most %d beats, following this sequence: %s\n",
		in.entry.MaxBeats, strings.Join(in.entry.RequiredBeatSequence, " -> ")))
	b.WriteString("- give every beat a word budget; budgets must sum inside the piece's hard maximum\n")
	b.WriteString("- required_elements: what the beat must contain to do its job\n")
	b.WriteString("- first_word_types: allowed opener kinds (noun, verb, number, name)\n")
	b.WriteString("- must_include_from_inputs: which task inputs surface in this beat\n")
	b.WriteString("- handoff: the tension the beat leaves open for the next one\n")
	if campaignType != "" {
		b.WriteString(fmt.Sprintf("- shape the sequence as a %s email campaign and set campaign_type to %q\n", campaignType, campaignType))
	}
	return baseSystem, b.String()
}

// draftInstructions is the revision focus per draft phase.
var draftInstructions = map[Phase]string{
	PhaseDraftV0: "Execute the beat sheet into a full draft. Hit every beat's budget and required elements.",
	PhaseCohesion: "Revise for cohesion: every beat must hand off cleanly to the next, claims in architecture order, no repeated points.",
	PhaseRhythm:   "Revise for rhythm: vary sentence length, cut every word that does no work, read it aloud in your head.",
	PhaseChannel:  "Revise for the channel: format, length, and conventions must fit where this will be read.",
}

func draftPrompt(in promptInput, phase Phase, beats BeatSheet, arch MessageArchitecture, prev *DraftVersion) (string, string) {
	var b strings.Builder
	b.WriteString(in.header())
	b.WriteString("\n")
	b.WriteString(in.limits())
	if phase == PhaseDraftV0 {
		b.WriteString("\nBEAT SHEET\n")
		for i, beat := range beats.Beats {
			b.WriteString(fmt.Sprintf("%d. %s (max %d words; elements: %s; handoff: %s)\n",
				i+1, beat.Name, beat.MaxWords, strings.Join(beat.RequiredElements, ", "), beat.Handoff))
		}
		b.WriteString("\nPRIMARY CLAIM: " + arch.PrimaryClaim.Text + "\n")
	}
	if prev != nil {
		b.WriteString("\nCURRENT DRAFT\n")
		b.WriteString(prev.Text)
		b.WriteString("\n")
	}
	b.WriteString("\n" + draftInstructions[phase] + "\n")
	b.WriteString("Summarize what you changed in notes.\n")
	return baseSystem, b.String()
}

func finalPrompt(in promptInput, arch MessageArchitecture, draft DraftVersion, feedback string) (string, string) {
	var b strings.Builder
	b.WriteString(in.header())
	b.WriteString("\n")
	b.WriteString(in.limits())
	b.WriteString("\nFINAL DRAFT\n")
	b.WriteString(draft.Text)
	b.WriteString("\n\nProduce the final package from this draft.\n")
	b.WriteString("- final: the finished text, polished but structurally unchanged\n")
	b.WriteString("- extras: 3 headlines, 3 subject lines, 3 calls to action, all within the same rules\n")
	b.WriteString("- qa_checklist: the specific checks a human should run before shipping\n")
	if feedback != "" {
		b.WriteString("\n")
		b.WriteString(feedback)
	}
	return baseSystem, b.String()
}

func variantPrompt(in promptInput, final, style string) (string, string) {
	var b strings.Builder
	b.WriteString(in.limits())
	b.WriteString("\nFINAL TEXT\n")
	b.WriteString(final)
	b.WriteString(fmt.Sprintf("\n\nRewrite the final text in a %s style. Same facts, same structure, same rules.\n", style))
	return baseSystem, b.String()
}
