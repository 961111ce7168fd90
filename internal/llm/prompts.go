package llm

const optimizePrompt = `You are an editor cleaning up an automatic speech transcript.

Rules:
- Fix punctuation, capitalization and obvious recognition errors
- Remove filler words and false starts
- Split the text into paragraphs by topic
- Keep the original language and meaning, do not summarize or add content
- Answer with the corrected text only

Transcript:
---
%s
---`

const translatePrompt = `Translate the text below from %s to %s.
Keep the paragraph structure and any technical terms that are commonly left untranslated.
Answer with the translation only.

Text:
---
%s
---`

const summarizePrompt = `Write a concise summary of the transcript below in %s.

Requirements:
- Start with one sentence describing the topic
- List the main points in the order they appear, as markdown bullet points
- Keep important numbers, names and warnings

Transcript:
---
%s
---`

const translateAndSummarizePrompt = `Translate the text below from %s to %s and then summarize it in %s.
Answer with a JSON object and nothing else:
{"translation": "<full translation>", "summary": "<markdown summary>"}

Text:
---
%s
---`

var languageNames = map[string]string{
	"auto": "the detected source language",
	"zh":   "Chinese",
	"en":   "English",
	"vi":   "Vietnamese",
	"ja":   "Japanese",
	"ko":   "Korean",
	"fr":   "French",
	"de":   "German",
	"es":   "Spanish",
	"ru":   "Russian",
	"pt":   "Portuguese",
	"it":   "Italian",
	"th":   "Thai",
	"ar":   "Arabic",
}

func languageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}
