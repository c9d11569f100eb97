package i18n

// creole maps English message keys to Haitian Creole.
var creole = map[string]string{
	// envelope
	"Validation failed":              "Validasyon an echwe",
	"Unauthorized access":            "Aksè pa otorize",
	"Invalid request format":         "Fòma demann lan pa bon",
	"Internal server error":          "Erè nan sèvè a",
	"%s not found":                   "Nou pa jwenn %s",
	"invoice":                        "fakti",
	"client":                         "kliyan",
	"item":                           "atik",
	"user":                           "itilizatè",
	"logo":                           "logo",
	"dashboard":                      "tablo bò",
	"resource":                       "resous",
	"Too many attempts, try again later.": "Twòp esè, eseye ankò pita.",
	"Unsupported API version":             "Vèsyon API sa a pa disponib",
	"Invalid ID":                          "ID a pa valid",
	"Request body too large":              "Demann lan twò gwo",

	// field validation
	"This field is required.":                                 "Chan sa a obligatwa.",
	"Enter a number.":                                         "Antre yon nimewo.",
	"Enter a valid date.":                                     "Antre yon dat ki valid.",
	"Enter a valid email address.":                            "Antre yon adrès imel ki valid.",
	"Enter a valid phone number.":                             "Antre yon nimewo telefòn ki valid.",
	"Select a valid choice.":                                  "Chwazi yon opsyon ki valid.",
	"Ensure this value is greater than or equal to 0.":        "Valè sa a dwe pi gran oswa egal a 0.",
	"Ensure this value is less than or equal to 100.":         "Valè sa a dwe pi piti oswa egal a 100.",
	"Ensure that there are no more than 2 decimal places.":    "Pa mete plis pase 2 chif apre vigil la.",
	"Ensure that there are no more than 10 digits in total.":  "Pa mete plis pase 10 chif an tou.",
	"Ensure this value has at most 255 characters.":           "Valè sa a pa dwe depase 255 karaktè.",
	"Ensure this value has at most 200 characters.":           "Valè sa a pa dwe depase 200 karaktè.",
	"Ensure this value has at most 150 characters.":           "Valè sa a pa dwe depase 150 karaktè.",
	"Ensure this value has at most 254 characters.":           "Valè sa a pa dwe depase 254 karaktè.",
	"Ensure this value has at most 500 characters.":           "Valè sa a pa dwe depase 500 karaktè.",
	"Ensure this value has at most 100 characters.":           "Valè sa a pa dwe depase 100 karaktè.",
	"Ensure this value has at most 50 characters.":            "Valè sa a pa dwe depase 50 karaktè.",
	"Ensure this value has at most 30 characters.":            "Valè sa a pa dwe depase 30 karaktè.",
	"Ensure this value has at least 3 characters.":            "Valè sa a dwe gen omwen 3 karaktè.",
	"Ensure this value has exactly 3 characters.":             "Valè sa a dwe gen egzakteman 3 karaktè.",
	"Enter at least one recipient.":                           "Mete omwen yon moun pou resevwa imel la.",
	"At least one line item is required.":                     "Fòk gen omwen yon liy nan fakti a.",
	"This invoice number is already used for your account.":   "Nimewo fakti sa a deja itilize nan kont ou.",
	"The due date must be on or after the issue date.":        "Dat limit la dwe vini apre dat fakti a.",
	"This client cannot be deleted because it has invoices.":  "Ou pa ka efase kliyan sa a paske li gen fakti.",
	"Unknown status.":                                         "Estati sa a pa egziste.",
	"Invalid address: %s":                                     "Adrès sa a pa valid: %s",

	// accounts
	"A user with that username already exists.":         "Gen yon itilizatè ki deja gen non sa a.",
	"The two password fields didn't match.":             "De modpas yo pa menm.",
	"This password is too short. It must contain at least 8 characters.": "Modpas la twò kout. Li dwe gen omwen 8 karaktè.",
	"This password is entirely numeric.":                "Modpas la gen chif sèlman.",
	"This password is too common.":                      "Modpas sa a twò komen.",
	"The password is too similar to the username.":      "Modpas la sanble twòp ak non itilizatè a.",
	"The password is too similar to the email address.": "Modpas la sanble twòp ak adrès imel la.",
	"Invalid username or password.":                     "Non itilizatè oswa modpas la pa bon.",
	"Your old password was entered incorrectly.":        "Ansyen modpas ou a pa bon.",
	"The password reset link is invalid or has expired.": "Lyen pou chanje modpas la pa valid oswa li ekspire.",
	"Invalid or expired token.":                         "Jeton an pa valid oswa li ekspire.",
	"If an account exists for that email, a reset link has been sent.": "Si gen yon kont pou imel sa a, nou voye yon lyen.",
	"Password changed successfully.":                    "Modpas la chanje.",
	"Logged out.":                                       "Ou dekonekte.",
	"Account deleted.":                                  "Kont lan efase.",
	"Upload a valid image. The file must be PNG or JPEG and at most 2 MB.": "Voye yon imaj ki valid. Fichye a dwe PNG oswa JPEG epi pa depase 2 MB.",
	"Password reset": "Chanje modpas",
	"Hello %s,\n\nUse the link below to choose a new password. It expires in one hour.\n\n%s\n\nIf you did not ask for this, ignore this email.\n": "Bonjou %s,\n\nSèvi ak lyen sa a pou chwazi yon nouvo modpas. Li ekspire nan inèdtan.\n\n%s\n\nSi se pa ou ki mande sa, pa okipe imel sa a.\n",

	// email
	"[Fakti] Invoice %s for %s": "[Fakti] Fakti %s pou %s",
	"Hello %s,\n\nPlease find attached your invoice %s totaling %s %s.\n\nThank you,\n%s": "Bonjou %s,\n\nNou voye fakti %s la ba ou, total la se %s %s.\n\nMèsi,\n%s",
	"The email could not be sent.": "Nou pa t ka voye imel la.",
	"Invoice sent.":                "Fakti a ale.",
	"The PDF could not be generated.": "Nou pa t ka fè PDF la.",

	// pdf
	"INVOICE":     "FAKTI",
	"Invoice #":   "Fakti #",
	"Issue date":  "Dat fakti",
	"Due date":    "Dat limit",
	"Status":      "Estati",
	"Bill to":     "Pou",
	"Description": "Deskripsyon",
	"Quantity":    "Kantite",
	"Unit price":  "Pri inite",
	"Amount":      "Montan",
	"Subtotal":    "Sou-total",
	"Tax (%s%%)":  "Taks (%s%%)",
	"Discount (%s%%)": "Rabè (%s%%)",
	"Total":       "Total",
	"Notes":       "Nòt",
	"Tax ID":      "Nimewo fiskal",
	"draft":       "bouyon",
	"sent":        "voye",
	"paid":        "peye",
	"overdue":     "an reta",
	"canceled":    "anile",

	// export
	"Number":   "Nimewo",
	"Client":   "Kliyan",
	"Currency": "Lajan",
	"Tax":      "Taks",
	"Discount": "Rabè",
	"Invoices": "Fakti yo",
	"Line items": "Liy yo",
	"Email":    "Imel",
}
