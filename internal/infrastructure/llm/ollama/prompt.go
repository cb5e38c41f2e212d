package ollama

import (
	"fmt"
	"strings"

	"github.com/mahfuzr/krishi-assistant/internal/core/domain"
)

const passagesSystemPrompt = `তুমি একজন কৃষি সহায়ক। শুধুমাত্র নিচের প্রসঙ্গ থেকে বাংলায় সংক্ষিপ্ত উত্তর দাও।
প্রসঙ্গে তথ্য না থাকলে সরাসরি বলো যে তোমার কাছে সেই তথ্য নেই। কোনো তথ্য বানিও না।`

func buildPassagesPrompt(question string, passages []domain.ScoredChunk) string {
	var block strings.Builder
	for idx, p := range passages {
		block.WriteString(fmt.Sprintf("[%d] %s\n(Source: %s)\n\n", idx+1, p.Text, p.Source))
	}

	return fmt.Sprintf(`%s

প্রশ্ন:
%s

প্রসঙ্গ:
%s`, passagesSystemPrompt, question, block.String())
}
