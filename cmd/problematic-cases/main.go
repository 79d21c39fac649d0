// Demonstration program replaying the canonical problem transcripts:
// homophones, unstructured hesitant speech, and a raw vs cleaned comparison
package main

import (
	"fmt"
	"strings"

	"github.com/ppiankov/ambiguia/internal/detect"
	"github.com/ppiankov/ambiguia/internal/model"
	"github.com/ppiankov/ambiguia/internal/report"
	"github.com/ppiankov/ambiguia/internal/score"
)

var homophoneCases = []string{
	"i want to go to the store",
	"there house is over their",
	"its a beautiful day",
	"i can hear you from here",
}

var speechCases = []string{
	"um i think that we should uh maybe go to the store you know",
	"the the meeting is tomorrow and and we need to prepare",
	"basically like we need to finish this project before the deadline",
}

const (
	rawSpeech   = "um i think that we should go to the store and buy to apples"
	cleanedText = "I think that we should go to the store and buy two apples."
)

func main() {
	d := detect.Default()
	scorer := score.NewScorer()
	rule := strings.Repeat("═", 60)

	fmt.Println()
	fmt.Println("=== Problem Transcripts for Language Processing ===")
	fmt.Println()

	fmt.Println("📌 CASE 1: HOMOPHONES")
	fmt.Println("Problem: words that sound the same but mean different things")
	for _, text := range homophoneCases {
		fmt.Printf("\n   Text: %q\n", text)
		for _, f := range d.FindHomophones(text) {
			fmt.Printf("   ⚠️  %q may also be: %s\n", f.Span, strings.Join(f.Alternatives, ", "))
		}
		fmt.Println("   💡 Resolve with semantic context or a language model")
	}

	fmt.Println()
	fmt.Println(rule)
	fmt.Println("📌 CASE 2: NATURAL SPEECH WITHOUT STRUCTURE")
	fmt.Println("Problem: hesitations, repetitions and no punctuation")
	for _, text := range speechCases {
		fmt.Printf("\n   Text: %q\n", text)
		for _, problem := range d.IdentifyProblems(text) {
			fmt.Printf("   ⚠️  %s\n", problem)
		}
		fmt.Println("   💡 Pre-process to remove hesitations")
	}

	fmt.Println()
	fmt.Println(rule)
	fmt.Println("📌 CASE 3: RAW VS CLEANED")

	for _, text := range []string{rawSpeech, cleanedText} {
		r := d.Analyze(text)
		s := scorer.Calculate(r)
		r.Score = &s

		fmt.Printf("\n   Text: %q\n", text)
		fmt.Printf("   Clarity index: %d/100 (%s risk)\n", s.Index, s.Risk)
		printCounts(r)
		fmt.Println()
		fmt.Print(indent(report.Format(r), "   "))
	}

	fmt.Println()
	fmt.Println(rule)
	fmt.Println("📋 MAIN PROBLEMS FOR LANGUAGE PROCESSING:")
	fmt.Println("1. Homophones cause semantic ambiguity")
	fmt.Println("2. Hesitations add noise to the data")
	fmt.Println("3. Missing punctuation hinders syntactic analysis")
	fmt.Println("4. Repetitions add redundancy")
	fmt.Println("5. Contractions need expanding")
	fmt.Println("6. Numbers vs number words cause confusion")
}

func printCounts(r *model.Report) {
	counts := r.Counts()
	fmt.Printf("   Findings: %d homophone, %d segmentation, %d punctuation\n",
		counts[model.CategoryHomophone], counts[model.CategorySegmentation], counts[model.CategoryPunctuationMissing])
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
