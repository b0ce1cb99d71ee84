/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"chainguard.dev/pairscreen/promptbuilder"
)

// screeningPrompt evaluates whether a generated image faithfully depicts
// its caption. The same rubric is used for both sides of a pair; the
// image_kind binding tells the model which side it is looking at.
var screeningPrompt = promptbuilder.MustNewPrompt(`<task>
You are screening images generated from captions for a visual entailment
dataset. You are shown one image together with the caption it was generated
from, plus the source sentence the caption was derived from. Decide whether
the image is a faithful, usable depiction of the caption.
</task>

{{original_text}}

{{caption}}

{{image_kind}}

<instructions>
Evaluate the image against the caption on these criteria:

1. Semantic accuracy: every entity, action, and relationship stated in the
   caption is visibly present in the image. Content the caption does not
   mention is acceptable; content that contradicts it is not.
2. Subject correctness: the main subject of the caption is the main subject
   of the image, with the correct count when the caption gives one.
3. Attribute accuracy: colors, sizes, materials, and other attributes the
   caption assigns to entities match what the image shows.
4. Context alignment: the setting and background are consistent with both
   the caption and the source sentence.
5. Visual quality: the image is free of generation artifacts severe enough
   to obscure the content being verified (distorted anatomy, garbled text,
   duplicated limbs, heavy smearing).

ACCEPT only when the image passes all five criteria. REJECT when any
criterion fails, and name the failing criterion in your reasoning. Judge
only what is visible; do not reward images for matching the source sentence
in ways the caption does not state.
</instructions>

<output_format>
Return your judgment as a JSON object with this structure:
{
  "decision": "accept" or "reject",
  "reasoning": "one or two sentences explaining the decision"
}
</output_format>

Respond with only the JSON object, no additional text.`)

// Bind implements promptbuilder.Bindable for Request
func (r *Request) Bind(prompt *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	prompt, err := prompt.BindXML("original_text", struct {
		XMLName struct{} `xml:"source_sentence"`
		Content string   `xml:",chardata"`
	}{
		Content: r.Text,
	})
	if err != nil {
		return nil, err
	}

	if prompt, err = prompt.BindXML("caption", struct {
		XMLName struct{} `xml:"caption"`
		Content string   `xml:",chardata"`
	}{
		Content: r.Caption,
	}); err != nil {
		return nil, err
	}

	return prompt.BindXML("image_kind", struct {
		XMLName struct{} `xml:"image_kind"`
		Content string   `xml:",chardata"`
	}{
		Content: string(r.Kind),
	})
}
