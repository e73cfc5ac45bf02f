package shell

import (
	"github.com/atinyakov/xenon/internal/client/auth"
	"github.com/atinyakov/xenon/internal/client/ui"
	"github.com/atinyakov/xenon/internal/client/vault"
)

// FormFields are the four inputs of an entry form.
type FormFields struct {
	Website  *ui.Field
	Username *ui.Field
	Password *ui.Field
	Notes    *ui.Field
}

func newFormFields() FormFields {
	return FormFields{
		Website:  ui.NewField(""),
		Username: ui.NewField(""),
		Password: ui.NewField(""),
		Notes:    ui.NewField(""),
	}
}

func (f FormFields) bind() vault.Form {
	return vault.Form{Website: f.Website, Username: f.Username, Password: f.Password, Notes: f.Notes}
}

// Screen is every region of the application, held in memory and printed by
// the shell on demand.
type Screen struct {
	Password       *ui.Field
	Code           *ui.Field
	Message        *ui.Text
	QR             *ui.Picture
	LoginButton    *ui.Panel
	RegisterButton *ui.Panel
	DoneButton     *ui.Panel
	AuthScreen     *ui.Panel
	VaultScreen    *ui.Panel

	NewMasterPassword *ui.Field
	Search            *ui.Field
	Add               FormFields
	Edit              FormFields
	AddPanel          *ui.Panel
	EditPanel         *ui.Panel
	EmptyState        *ui.Panel
	Table             *ui.Grid
	Status            *ui.Text

	Length  *ui.Field
	Lower   *ui.Field
	Upper   *ui.Field
	Numbers *ui.Field
	Symbols *ui.Field
}

// NewScreen returns a Screen showing the auth screen, with generator
// defaults of 16 characters from every class.
func NewScreen() *Screen {
	s := &Screen{
		Password:       ui.NewField(""),
		Code:           ui.NewField(""),
		Message:        &ui.Text{},
		QR:             &ui.Picture{},
		LoginButton:    ui.NewPanel(true),
		RegisterButton: ui.NewPanel(true),
		DoneButton:     ui.NewPanel(false),
		AuthScreen:     ui.NewPanel(true),
		VaultScreen:    ui.NewPanel(false),

		NewMasterPassword: ui.NewField(""),
		Search:            ui.NewField(""),
		Add:               newFormFields(),
		Edit:              newFormFields(),
		AddPanel:          ui.NewPanel(true),
		EditPanel:         ui.NewPanel(false),
		EmptyState:        ui.NewPanel(true),
		Table:             &ui.Grid{},
		Status:            &ui.Text{},

		Length:  ui.NewField("16"),
		Lower:   ui.NewField(""),
		Upper:   ui.NewField(""),
		Numbers: ui.NewField(""),
		Symbols: ui.NewField(""),
	}
	for _, t := range []*ui.Field{s.Lower, s.Upper, s.Numbers, s.Symbols} {
		t.SetChecked(true)
	}
	return s
}

// AuthBindings returns the regions driven by the auth controller.
func (s *Screen) AuthBindings() auth.Bindings {
	return auth.Bindings{
		Password:       s.Password,
		Code:           s.Code,
		Message:        s.Message,
		QRCode:         s.QR,
		QRPanel:        s.QR,
		LoginButton:    s.LoginButton,
		RegisterButton: s.RegisterButton,
		DoneButton:     s.DoneButton,
		AuthScreen:     s.AuthScreen,
		VaultScreen:    s.VaultScreen,
	}
}

// VaultBindings returns the regions driven by the vault controller.
func (s *Screen) VaultBindings() vault.Bindings {
	return vault.Bindings{
		NewMasterPassword: s.NewMasterPassword,
		Search:            s.Search,
		Add:               s.Add.bind(),
		Edit:              s.Edit.bind(),
		AddPanel:          s.AddPanel,
		EditPanel:         s.EditPanel,
		Table:             s.Table,
		EmptyState:        s.EmptyState,
		Status:            s.Status,
		Generator: vault.GeneratorControls{
			Length:    s.Length,
			Lowercase: s.Lower,
			Uppercase: s.Upper,
			Numbers:   s.Numbers,
			Symbols:   s.Symbols,
		},
	}
}
