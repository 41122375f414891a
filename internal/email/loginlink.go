package email

import (
	"context"
	"fmt"
	"time"
)

// SendLoginLink delivers a single-use sign-in link. The link embeds the token;
// the message never mentions whether the account existed before.
func SendLoginLink(ctx context.Context, sender EmailSender, recipient, appName, link string, ttl time.Duration) error {
	if sender == nil {
		return fmt.Errorf("email sender is not configured")
	}

	subject := fmt.Sprintf("Inicia sesión en %s", appName)
	body := fmt.Sprintf(
		"Hola,\n\n"+
			"Usa este enlace para iniciar sesión en %s:\n\n%s\n\n"+
			"El enlace expira en %d minutos y solo puede usarse una vez. "+
			"Si no solicitaste este correo, puedes ignorarlo.\n",
		appName, link, int(ttl.Minutes()),
	)

	return sender.Send(ctx, recipient, subject, body)
}
