package emailsvc

import (
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
)

var (
	// SentMessages records every message handed to the mock service, for tests.
	SentMessages = make([]core.EmailMessage, 0)
	mu           sync.Mutex
)

type consoleService struct {
	defaultFromEmail mail.Address
	subjPrefix       string
	disableOutput    bool
}

var _ core.EmailService = (*consoleService)(nil)

// NewConsoleService returns an EmailService that prints messages to stdout.
func NewConsoleService(conf *core.Config) core.EmailService {
	return &consoleService{
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
	}
}

// NewConsoleServiceMock returns a silent EmailService recording messages in
// SentMessages.
func NewConsoleServiceMock(conf *core.Config) core.EmailService {
	return &consoleService{
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
		disableOutput:    true,
	}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		svc.sendMessage(msg)
	}
}

func (svc consoleService) sendMessage(msg *core.EmailMessage) {
	if err := msg.Render(); err != nil {
		fmt.Printf("rendering email: %+v\n", err)
		return
	}
	if !(msg.HasRecipients() && msg.HasContent()) {
		return
	}

	mu.Lock()
	SentMessages = append(SentMessages, *msg)
	mu.Unlock()

	if svc.disableOutput {
		return
	}

	var sb strings.Builder
	sb.WriteString("From: " + svc.defaultFromEmail.String() + "\n")
	sb.WriteString("To: " + formatAddresses(msg.To) + "\n")
	if len(msg.Cc) > 0 {
		sb.WriteString("Cc: " + formatAddresses(msg.Cc) + "\n")
	}
	sb.WriteString("Subject: " + svc.subjPrefix + msg.Subject + "\n\n")
	sb.WriteString(msg.TextContent + "\n")
	fmt.Println(sb.String())
}

func formatAddresses(addrs []mail.Address) string {
	strs := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		strs = append(strs, addr.String())
	}
	return strings.Join(strs, ", ")
}

// ClearSentMessages resets the recorded messages between tests.
func ClearSentMessages() {
	mu.Lock()
	SentMessages = SentMessages[:0]
	mu.Unlock()
}
