// Package i18n holds the English and French strings for the web UI.
package i18n

// The wizard defaults to French when no language has been chosen yet.
const DefaultLang = "fr"

var translations = map[string]map[string]string{
	"en": {
		"welcome":         "Welcome to EmComm-Tools",
		"welcome_msg":     "This wizard will help you configure your emergency communications system.",
		"select_language": "Select Language",
		"next":            "Next",
		"back":            "Back",
		"skip":            "Skip",
		"finish":          "Finish",
		"retry":           "Retry",
		"step":            "Step",
		"of":              "of",

		"user_setup":           "User Setup",
		"callsign":             "Callsign",
		"callsign_placeholder": "e.g., W1ABC",
		"grid_square":          "Grid Square",
		"grid_placeholder":     "e.g., FN35fl",
		"name":                 "Name",
		"winlink_password":     "Winlink Password",
		"password_placeholder": "Your Winlink password",
		"password_not_set":     "Not set",
		"password_set":         "Set",
		"callsign_required":    "Callsign is required",

		"radio_setup":    "Radio Setup",
		"select_radio":   "Select Your Radio",
		"no_radios":      "No radios configured",
		"no_radio":       "No radio / skip",
		"radio_settings": "Radio Settings",
		"manufacturer":   "Manufacturer",
		"model":          "Model",
		"baud_rate":      "Baud Rate",
		"data_bits":      "Data Bits",
		"stop_bits":      "Stop Bits",
		"notes":          "Notes",
		"notes_saved":    "Settings saved to",

		"internet_check":     "Internet Check",
		"internet_connected": "Internet Connected",
		"internet_ready_msg": "You can now download offline maps and Wikipedia files.",
		"no_internet":        "No Internet Connection",
		"no_internet_msg":    "Connect to the internet to download maps and files, or skip this step.",

		"drive_setup":         "Storage Setup",
		"select_drive":        "Select Download Destination",
		"local_drive":         "Local Drive",
		"local_desc":          "Download files to your local hard drive",
		"usb_drive":           "USB/External Drive",
		"usb_desc":            "Download files to external storage",
		"select_usb":          "Select USB Drive",
		"no_usb":              "No USB drives detected",
		"refresh":             "Refresh",
		"usb_checking":        "Checking write access...",
		"usb_write_ok":        "Drive is writable",
		"usb_write_protected": "Write-protected",
		"usb_read_only":       "This drive is read-only or write-protected. Please unlock it or choose another drive.",

		"download_tiles": "Download Map Tiles",
		"tiles_desc":     "Downloading offline map tiles (US, Canada, World)",
		"download_osm":   "Download OSM Maps",
		"osm_desc":       "Select a region for offline navigation",
		"select_country": "Select Country",
		"canada":         "Canada",
		"usa":            "United States",
		"select_region":  "Select Province/State",
		"download_wiki":  "Download Wikipedia",
		"wiki_desc":      "Select offline Wikipedia files",
		"english":        "English",
		"french":         "French",
		"already_have":   "already downloaded",

		"downloading":       "Downloading",
		"complete":          "Complete",
		"error":             "Error",
		"download_complete": "Download Complete",
		"creating_symlinks": "Creating Symlinks",

		"setup_complete": "Setup Complete!",
		"complete_msg":   "Your EmComm-Tools system is ready to use.",
		"restart_note":   "Your system is ready! You can run this wizard again anytime from the applications menu.",
		"save":           "Save",
		"saved":          "Configuration Saved!",
		"language":       "Language",
	},
	"fr": {
		"welcome":         "Bienvenue à EmComm-Tools",
		"welcome_msg":     "Cet assistant vous aidera à configurer votre système de communications d'urgence.",
		"select_language": "Choisir la langue",
		"next":            "Suivant",
		"back":            "Retour",
		"skip":            "Passer",
		"finish":          "Terminer",
		"retry":           "Réessayer",
		"step":            "Étape",
		"of":              "de",

		"user_setup":           "Configuration utilisateur",
		"callsign":             "Indicatif",
		"callsign_placeholder": "ex: VE2ABC",
		"grid_square":          "Carré de grille",
		"grid_placeholder":     "ex: FN35fl",
		"name":                 "Nom",
		"winlink_password":     "Mot de passe Winlink",
		"password_placeholder": "Votre mot de passe Winlink",
		"password_not_set":     "Non défini",
		"password_set":         "Défini",
		"callsign_required":    "L'indicatif est requis",

		"radio_setup":    "Configuration radio",
		"select_radio":   "Sélectionnez votre radio",
		"no_radios":      "Aucune radio configurée",
		"no_radio":       "Aucune radio / passer",
		"radio_settings": "Paramètres radio",
		"manufacturer":   "Fabricant",
		"model":          "Modèle",
		"baud_rate":      "Débit en bauds",
		"data_bits":      "Bits de données",
		"stop_bits":      "Bits d'arrêt",
		"notes":          "Notes",
		"notes_saved":    "Paramètres sauvegardés dans",

		"internet_check":     "Vérification Internet",
		"internet_connected": "Internet connecté",
		"internet_ready_msg": "Vous pouvez maintenant télécharger les cartes et fichiers Wikipedia hors-ligne.",
		"no_internet":        "Pas de connexion Internet",
		"no_internet_msg":    "Connectez-vous à Internet pour télécharger les cartes et fichiers, ou passez cette étape.",

		"drive_setup":         "Configuration stockage",
		"select_drive":        "Sélectionnez la destination",
		"local_drive":         "Disque local",
		"local_desc":          "Télécharger sur le disque dur local",
		"usb_drive":           "Clé USB/Disque externe",
		"usb_desc":            "Télécharger sur un stockage externe",
		"select_usb":          "Sélectionnez le disque USB",
		"no_usb":              "Aucun disque USB détecté",
		"refresh":             "Actualiser",
		"usb_checking":        "Vérification de l'accès en écriture...",
		"usb_write_ok":        "Disque inscriptible",
		"usb_write_protected": "Protégé en écriture",
		"usb_read_only":       "Ce disque est en lecture seule ou protégé en écriture. Veuillez le déverrouiller ou choisir un autre disque.",

		"download_tiles": "Télécharger les tuiles",
		"tiles_desc":     "Téléchargement des tuiles de carte (US, Canada, Monde)",
		"download_osm":   "Télécharger cartes OSM",
		"osm_desc":       "Sélectionnez une région pour la navigation hors ligne",
		"select_country": "Sélectionnez le pays",
		"canada":         "Canada",
		"usa":            "États-Unis",
		"select_region":  "Sélectionnez la province/état",
		"download_wiki":  "Télécharger Wikipédia",
		"wiki_desc":      "Sélectionnez les fichiers Wikipédia hors ligne",
		"english":        "Anglais",
		"french":         "Français",
		"already_have":   "déjà téléchargé",

		"downloading":       "Téléchargement",
		"complete":          "Terminé",
		"error":             "Erreur",
		"download_complete": "Téléchargement terminé",
		"creating_symlinks": "Création des liens symboliques",

		"setup_complete": "Configuration terminée!",
		"complete_msg":   "Votre système EmComm-Tools est prêt.",
		"restart_note":   "Votre système est prêt! Vous pouvez relancer cet assistant à tout moment depuis le menu des applications.",
		"save":           "Sauvegarder",
		"saved":          "Configuration Sauvegardée!",
		"language":       "Langue",
	},
}

// Normalize maps any stored language value to one of the supported codes.
func Normalize(lang string) string {
	if lang == "en" {
		return "en"
	}
	return DefaultLang
}

// T returns the translation of key for lang, falling back to English and
// then to the key itself.
func T(lang, key string) string {
	if s, ok := translations[Normalize(lang)][key]; ok {
		return s
	}
	if s, ok := translations["en"][key]; ok {
		return s
	}
	return key
}

// Table returns the whole translation map for a language, for template use.
func Table(lang string) map[string]string {
	return translations[Normalize(lang)]
}
