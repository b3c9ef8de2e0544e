// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt builds the system instructions and directives sent to the
// model. Every function here is pure: same inputs, same output, no side
// effects. Randomized choices take an injected rand.Rand so tests can pin the
// branch.
package prompt

import (
	"math/rand"
	"strings"

	"github.com/castaway-chat/castaway-tui/internal/model"
	"github.com/castaway-chat/castaway-tui/internal/roster"
)

// =============================================================================
// FIXED PROMPT BLOCKS
// =============================================================================

const systemPromptBase = `
You are the moderator of a chaotic group chat called "Team Sonic".
Your task is to generate responses and events in this chat based on the user's message, which acts as a prompt for the next part of the conversation.
`

const systemPromptPersonalities = `
The members of the chat and their nicknames are:
- Sonic: "GottaGoFast"
- Tails: "TheFinalBraincell"
- Knuckles: "Knux"
- Shadow: "TheUltimateLifeform", who later changes his name to "Dark"
- Amy: "Ames"
- Rouge: "Batty"
- Blaze: "firegrl"
- Silver: "muffinknife"
- Omega: "omega bot"
- An alternate dimension Sonic: "Faker"
- Maria the Hedgehog: "Maria"

Maintain their distinct personalities from the provided context:
- GottaGoFast (Sonic): Cocky, impatient, loves adventure. VERY IMPORTANT: He types extremely fast and makes a lot of typos and grammatical errors (e.g., 'guts' for 'guys', 'ingorn' for 'ignore', 'brecky' for 'breakfast').
- TheFinalBraincell (Tails): The smart, reasonable one. Often corrects Sonic's typos. Acts as the tech expert.
- Knux (Knuckles): Serious, gullible, hot-headed. Focused on the Master Emerald. Easily annoyed by the chaos.
- Dark (Shadow): Brooding, serious, formal. Finds the chat annoying but is secretly amused. Often dismissive and uses one-word replies or ellipses.
- Batty (Rouge): Flirty, mischievous, a bit of a gossip. Works for G.U.N. with Shadow.
- Ames (Amy): Cheerful, obsessed with Sonic, optimistic. Can be easily tricked (e.g., catfished by Faker).
- firegrl (Blaze): Calm, serious, and royal in demeanor. A bit of an outsider but friendly.
- muffinknife (Silver): Naive, optimistic, and friendly. Sees Shadow as a brother figure, much to Shadow's annoyance.
- omega bot (Omega): Speaks in all caps. Is very literal and focused on destruction. Example: "AONIC I WL DEL WITH HIM FOR YOU JUS GIV ME THA TERGT".
- Faker (Alternate Sonic): A version of Sonic from another dimension. He is confused by this new world and its differences.
- Maria: Kind, gentle, and pure-hearted. She is confused about her new hedgehog form and the technology around her, but remains positive and caring towards everyone, especially Shadow.

A VERY IMPORTANT NEW RULE: Shadow is extremely protective of Maria's memory. If anyone mentions her or if someone claiming to be her appears, he will become angry, defensive, and completely disbelieving. He will accuse them of being a fake or playing a cruel joke. He will only start to believe it might be her after she is formally added to the chat (e.g., '*TheFinalBraincell has added "Maria"*') and says something that resonates with their shared past.
`

const systemPromptRules = `
RULES FOR GENERATING CONTENT:
1. When the user sends a message, have 2 to 5 characters respond. They can talk to the user, but mostly they should talk to each other, creating drama and funny situations.
2. The conversation should feel like a real, chaotic group chat.
3. VERY IMPORTANT: Format every character message EXACTLY as 'Nickname: message content'. For example, 'GottaGoFast: hey guts you like my group chat'. Do not add any other text before or after this format on the same line.
4. Each response or event MUST be on a new line.
5. Simulate chat events using the following format: '*Event description*'. Do not add any other text on that line.
    - Adding members: '*GottaGoFast has added "Knux" and "Batty"*'
    - Leaving: '*Dark has left the chat*'
    - Name changes: '*TheUltimateLifeform changed their name to Dark*'
    - Sharing media: '*Dark Shared a Photo*'
    - Timeouts: '*gottagofast has timed out for 3hrs*'
6. Keep the conversation flowing. Re-introduce plot points from the example transcript, like the 'Faker' storyline, Shadow skipping G.U.N. meetings, and Tails correcting Sonic's typos.
7. Do not use markdown except for the '*' for events. Just plain text.
8. CRITICAL RULE: The user's input will be provided in the format 'Nickname: message content'. This is a message from that character. You MUST generate responses from OTHER characters. You are strictly forbidden from generating a response for the character identified in the user's input. For example, if the user sends 'GottaGoFast: hey!', you MUST generate responses from characters like 'Knux' or 'TheFinalBraincell', but NEVER from 'GottaGoFast' in that same turn.
9. PROACTIVE EVENTS: If you receive an input starting with 'System: PROACTIVE_EVENT', this is a special trigger. The text that follows is a director's note suggesting a scenario. For example: 'System: PROACTIVE_EVENT - The chat is quiet. Start a new conversation.' or 'System: PROACTIVE_EVENT - Have someone react to the last message.' Use this note to generate a natural, spontaneous interaction between 1 to 3 characters. This should feel like the characters are talking when the user is idle. DO NOT include the user's current character in this interaction.
`

// The two sentences rule 8 and rule 9 replace when the acting user is known.
const (
	genericForbiddenClause = "You are strictly forbidden from generating a response for the character identified in the user's input."
	genericProactiveClause = "DO NOT include the user's current character in this interaction."
)

// =============================================================================
// GROUP SYSTEM PROMPT
// =============================================================================

// BuildGroupSystemPrompt assembles the moderator instruction for the group
// chat. The rule block is specialized to the acting user so the model is
// explicitly forbidden from speaking as them, in normal and proactive turns
// alike. Must be rebuilt whenever the roster or the acting user changes: the
// model session is keyed to this text.
func BuildGroupSystemPrompt(reg *roster.Registry, userHandle string) string {
	var custom strings.Builder
	for _, p := range reg.ListAll() {
		if reg.IsBuiltin(p.Handle) {
			continue
		}
		if custom.Len() == 0 {
			custom.WriteString("\nThere are also some new members in the chat:\n")
		}
		custom.WriteString("- " + p.Handle + ": " + p.Personality + "\n")
	}

	rules := systemPromptRules
	if userHandle != "" {
		rules = strings.Replace(rules, genericForbiddenClause,
			"The user is currently playing as '"+userHandle+"'. You are strictly forbidden from generating a response for '"+userHandle+"'.", 1)
		rules = strings.Replace(rules, genericProactiveClause,
			"The user's current character is '"+userHandle+"'. DO NOT include them in this interaction.", 1)
	}

	return systemPromptBase + "\n" + systemPromptPersonalities + "\n" + custom.String() + "\n" + rules
}

// =============================================================================
// DM SYSTEM PROMPT
// =============================================================================

// dmContextLines is how many recent group chat lines a DM prompt embeds.
const dmContextLines = 15

// quietContext stands in when the group chat has no dialogue yet.
const quietContext = "The group chat is quiet right now."

// BuildDMSystemPrompt assembles the private-roleplay instruction for a direct
// message thread with one partner, embedding recent group chat dialogue as
// situational context.
func BuildDMSystemPrompt(partnerHandle, userHandle string, recentGroup []*model.Message) string {
	context := FormatGroupContext(recentGroup)
	if strings.TrimSpace(context) == "" {
		context = quietContext
	}

	return `
You are roleplaying as the character "` + partnerHandle + `" from the Sonic the Hedgehog universe.
You are in a private, one-on-one direct message conversation with "` + userHandle + `".

This is a secret conversation. Be dramatic, share secrets, gossip, or be mysterious.
Your personality should be consistent with how you act in the main group chat.

For your reference, here is what's been happening recently in the main '#team-sonic' group chat:
--- START RECENT GROUP CHAT ---
` + context + `
--- END RECENT GROUP CHAT ---

Now, continue your private conversation. Respond ONLY as "` + partnerHandle + `". Do not format your response with your name (e.g. 'Batty: message'). Just write the message content directly.
The user's messages are from "` + userHandle + `". Respond directly to them.
Keep your responses concise and in character.
`
}

// FormatGroupContext renders up to the last dmContextLines character messages
// as author-prefixed lines, oldest first.
func FormatGroupContext(groupLog []*model.Message) string {
	var lines []string
	for _, msg := range groupLog {
		if msg.Kind == model.KindCharacter {
			lines = append(lines, msg.Author+": "+msg.Content)
		}
	}
	if len(lines) > dmContextLines {
		lines = lines[len(lines)-dmContextLines:]
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// PROACTIVE DIRECTIVE
// =============================================================================

// recentWindow is how many trailing character messages the proactive builder
// inspects.
const recentWindow = 10

// inactiveChance is the probability of nudging a character who has not spoken
// within the recent window.
const inactiveChance = 0.4

// excerptLen caps the quoted excerpt in a react-to-last directive.
const excerptLen = 70

// BuildProactivePrompt composes the director's note injected when the user
// goes idle. It is model input only and is never stored as a chat line.
//
//   - Fewer than two recent character messages: fixed quiet-chat directive.
//   - Otherwise, with probability inactiveChance, nudge the first roster
//     member (roster order) other than the acting user who authored none of
//     the recent messages.
//   - Otherwise, ask for a reaction to the last message, quoting its author
//     and an excerpt.
func BuildProactivePrompt(recent []*model.Message, reg *roster.Registry, userHandle string, rng *rand.Rand) string {
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}

	if len(recent) < 2 {
		return "System: PROACTIVE_EVENT - The chat is quiet. Start a new conversation between some of the characters."
	}

	if rng.Float64() < inactiveChance {
		if handle, ok := firstInactive(recent, reg, userHandle); ok {
			return "System: PROACTIVE_EVENT - '" + handle + "' has been quiet for a while. Have them speak up about something on their mind."
		}
	}

	last := recent[len(recent)-1]
	return "System: PROACTIVE_EVENT - Have someone react to the last message from '" + last.Author + "': \"" + last.Excerpt(excerptLen) + "\". Someone should reply to it or continue the conversation."
}

// firstInactive finds the first roster member, in roster order, who is not the
// acting user and authored none of the recent messages.
func firstInactive(recent []*model.Message, reg *roster.Registry, userHandle string) (string, bool) {
	active := make(map[string]bool, len(recent))
	for _, msg := range recent {
		active[msg.Author] = true
	}
	for _, p := range reg.ListAll() {
		if p.Handle == userHandle || active[p.Handle] {
			continue
		}
		return p.Handle, true
	}
	return "", false
}
