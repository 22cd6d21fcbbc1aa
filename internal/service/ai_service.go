package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/casecraft/casecraft_server/internal/provider/openai"
)

// textGenerator 文本生成依赖，便于测试替换
type textGenerator interface {
	ChatCompletion(ctx context.Context, system, user string) (string, error)
}

// AIService 基于案例总结生成各类媒体文案。
// OpenAI 不可用时走本地截断兜底，保证媒体派发不被文案生成阻塞
type AIService struct {
	generator textGenerator
}

func NewAIService(generator textGenerator) *AIService {
	return &AIService{generator: generator}
}

const videoScriptSystem = `You turn business case studies into natural, conversational video scripts.
The script must be 140-150 words (exactly 1 minute at normal speaking pace).
Write as a real person excitedly sharing a success story with a friend.
No section headers or labels. No corporate jargon, no robotic phrases like
"the results" or "the solution" - say what actually happened. Use contractions
and active voice. The script must have a complete ending, never cut off.`

const newsflashScriptSystem = `You turn business case studies into breaking-news style video scripts.
The script must be 70-75 words (exactly 30 seconds at normal speaking pace).
Write as a news anchor delivering breaking news - energetic and urgent.
Open with an attention-grabbing hook like "Breaking News!" and end with a
strong conclusion summarizing the impact. No labels, no corporate jargon.`

const pictoryStorySystem = `You create scene-by-scene narrations for short vertical videos.
Write a clear, engaging story suitable for visual storytelling, one complete
sentence per scene. Plain narration only - no scene numbers, no labels.`

const podcastSummarySystem = `Summarize this business case study in exactly 150 words or less.
Include the client and challenge, the solution, key results, and main lessons.
Write in a natural, conversational style that works well for a podcast.
Remove any formatting, headers, or technical jargon.
Return ONLY the summary, nothing else.`

const linkedinPostSystem = `You write LinkedIn posts from business case studies.
Rules: no section labels of any kind. First line is a hook of at most 10 words
with no emojis, hashtags, or links. Then 4-6 short paragraphs of 1-3 sentences,
each sentence on its own line. Total length 80-120 words. Write in the same
language as the case study. End with 3-5 relevant hashtags on the final line.`

// podcastPromptTemplate 拼装给 Wondercraft 的完整提示词，说话人名字固定
const podcastPromptTemplate = `Make the conversation energetic, positive, and excited throughout - not over the top, just genuinely enthusiastic.

Create an exactly 5-minute business podcast between only two persons about this success story no other voices. Make it conversational and engaging.

CRITICAL NAMING: Use two speakers with these exact names and genders: Jimmy (male) and Emma (female). Prefix every line of dialogue with the speaker's name followed by a colon, like "Jimmy:" or "Emma:". Start the conversation with Jimmy speaking first, then alternate naturally. Do NOT use labels like "Speaker 1" or "Speaker 2" anywhere.

Business case study:
%s`

// VideoScript 生成 1 分钟视频口播稿
func (s *AIService) VideoScript(ctx context.Context, summary string) string {
	return s.generate(ctx, videoScriptSystem, truncateRunes(summary, 2000), 150)
}

// NewsflashScript 生成 30 秒快讯视频口播稿
func (s *AIService) NewsflashScript(ctx context.Context, summary string) string {
	return s.generate(ctx, newsflashScriptSystem, truncateRunes(summary, 1500), 75)
}

// PictoryStory 生成分镜叙述文本
func (s *AIService) PictoryStory(ctx context.Context, summary string) string {
	return s.generate(ctx, pictoryStorySystem, truncateRunes(summary, 1500), 0)
}

// PodcastPrompt 先把总结压缩到 150 词，再套上双人对话模板
func (s *AIService) PodcastPrompt(ctx context.Context, summary string) string {
	condensed := s.generate(ctx, podcastSummarySystem, summary, 150)
	return fmt.Sprintf(podcastPromptTemplate, condensed)
}

// LinkedInPost 生成 LinkedIn 推广文案
func (s *AIService) LinkedInPost(ctx context.Context, summary string) (string, error) {
	text, err := s.generator.ChatCompletion(ctx, linkedinPostSystem, truncateRunes(summary, 2000))
	if err != nil {
		return "", fmt.Errorf("failed to generate LinkedIn post: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// generate 调用模型生成文案，失败时截断原始总结兜底
func (s *AIService) generate(ctx context.Context, system, summary string, fallbackWords int) string {
	text, err := s.generator.ChatCompletion(ctx, system, summary)
	if err == nil {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return trimmed
		}
		err = fmt.Errorf("empty completion")
	}
	if err != openai.ErrNotConfigured {
		log.Printf("AIService fallback to raw summary: %v", err)
	}

	if fallbackWords > 0 {
		return truncateWords(summary, fallbackWords)
	}
	return strings.TrimSpace(summary)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func truncateWords(s string, max int) string {
	words := strings.Fields(s)
	if len(words) <= max {
		return strings.TrimSpace(s)
	}
	return strings.Join(words[:max], " ")
}
