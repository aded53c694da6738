package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/samber/lo"

	"github.com/opencurrent/opencurrent/app/core"
	"github.com/opencurrent/opencurrent/app/store"
	"github.com/opencurrent/opencurrent/pkg/ai"
	"github.com/opencurrent/opencurrent/pkg/errors"
	"github.com/opencurrent/opencurrent/pkg/i18n"
	"github.com/opencurrent/opencurrent/pkg/types"
)

const chatRetrievalLimit = 5

type ChatLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewChatLogic(ctx context.Context, core *core.Core) *ChatLogic {
	return &ChatLogic{
		ctx:  ctx,
		core: core,
	}
}

type ChatAnswer struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

// Answer retrieves the chunks most relevant to the question and asks the
// model to answer from them alone. An unknown session is a client error,
// not an empty answer.
func (l *ChatLogic) Answer(sessionID, question string) (ChatAnswer, error) {
	ctx, cancel := context.WithTimeout(l.ctx, l.core.Cfg().Request.Timeout())
	defer cancel()

	if _, err := l.core.Collections().Get(ctx, sessionID); err != nil {
		if err == store.ErrNotFound {
			return ChatAnswer{}, errors.New("ChatLogic.Answer.Get", i18n.ERROR_SESSION_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return ChatAnswer{}, errors.New("ChatLogic.Answer.Get", i18n.ERROR_INTERNAL, err)
	}

	timer := l.core.Metrics().RetrievalTimer("chat")
	chunks, err := l.core.Collections().Query(ctx, sessionID, question, chatRetrievalLimit)
	timer.ObserveDuration()
	if err != nil {
		return ChatAnswer{}, errors.New("ChatLogic.Answer.Query", i18n.ERROR_INTERNAL, err)
	}

	if len(chunks) == 0 {
		return ChatAnswer{SessionID: sessionID, Answer: ai.NoRelevantContextMessage}, nil
	}

	contextBlock := strings.Join(lo.Map(chunks, func(item types.Chunk, _ int) string {
		return item.Content
	}), ai.ContextSeparator)

	prompt := strings.ReplaceAll(ai.PROMPT_RAG_ANSWER_EN, "{context}", contextBlock)
	prompt = strings.ReplaceAll(prompt, "{question}", question)

	if l.core.Srv().AI().PromptIsOverLimit(prompt) {
		return ChatAnswer{}, errors.New("ChatLogic.Answer", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	genTimer := l.core.Metrics().ModelRequestTimer("generate")
	resp, err := l.core.Srv().AI().Generate(ctx, prompt)
	genTimer.ObserveDuration()
	if err != nil {
		return ChatAnswer{}, errors.New("ChatLogic.Answer.Generate", i18n.ERROR_INTERNAL, err)
	}

	return ChatAnswer{SessionID: sessionID, Answer: resp.Message()}, nil
}
