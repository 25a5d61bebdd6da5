package models

// Campus identifies a university campus
type Campus string

const (
	CampusAntonioVaras Campus = "ANTONIO_VARAS"
	CampusVinaDelMar   Campus = "VINA_DEL_MAR"
	CampusConcepcion   Campus = "CONCEPCION"
)

// Career identifies an engineering programme
type Career string

const (
	CareerCivil      Career = "CIVIL_ENGINEERING"
	CareerComputer   Career = "COMPUTER_ENGINEERING"
	CareerElectrical Career = "ELECTRICAL_ENGINEERING"
	CareerIndustrial Career = "INDUSTRIAL_ENGINEERING"
)

// Subject identifies a course a mentor can help with
type Subject string

const (
	SubjectCalculusI     Subject = "CALCULUS_I"
	SubjectLinearAlgebra Subject = "LINEAR_ALGEBRA"
	SubjectPhysics       Subject = "PHYSICS"
	SubjectProgramming   Subject = "PROGRAMMING"
	SubjectElectronics   Subject = "ELECTRONICS"
)

// Language is the language a session is held in
type Language string

const (
	LanguageSpanish        Language = "SPANISH"
	LanguageEnglish        Language = "ENGLISH"
	LanguageSpanishEnglish Language = "SPANISH_ENGLISH"
)

// Modality is how a session is held
type Modality string

const (
	ModalityInPerson Modality = "IN_PERSON"
	ModalityOnline   Modality = "ONLINE"
)

// Ordered option lists, used by validation tags and form selects
var (
	Campuses   = []Campus{CampusAntonioVaras, CampusVinaDelMar, CampusConcepcion}
	Careers    = []Career{CareerCivil, CareerComputer, CareerElectrical, CareerIndustrial}
	Subjects   = []Subject{SubjectCalculusI, SubjectLinearAlgebra, SubjectPhysics, SubjectProgramming, SubjectElectronics}
	Languages  = []Language{LanguageSpanish, LanguageEnglish, LanguageSpanishEnglish}
	Modalities = []Modality{ModalityInPerson, ModalityOnline}
)

var campusLabels = map[Campus]string{
	CampusAntonioVaras: "Antonio Varas",
	CampusVinaDelMar:   "Viña del Mar",
	CampusConcepcion:   "Concepción",
}

var careerLabels = map[Career]string{
	CareerCivil:      "Ingeniería Civil",
	CareerComputer:   "Ingeniería en Computación",
	CareerElectrical: "Ingeniería Eléctrica",
	CareerIndustrial: "Ingeniería Industrial",
}

var subjectLabels = map[Subject]string{
	SubjectCalculusI:     "Cálculo I",
	SubjectLinearAlgebra: "Álgebra Lineal",
	SubjectPhysics:       "Física",
	SubjectProgramming:   "Programación",
	SubjectElectronics:   "Electrónica",
}

var languageLabels = map[Language]string{
	LanguageSpanish:        "Español",
	LanguageEnglish:        "Inglés",
	LanguageSpanishEnglish: "Español e Inglés",
}

var modalityLabels = map[Modality]string{
	ModalityInPerson: "Presencial",
	ModalityOnline:   "Online",
}

// Label returns the Spanish display text, or the raw value when unknown
func (c Campus) Label() string { return labelOr(campusLabels, c) }

func (c Career) Label() string { return labelOr(careerLabels, c) }

func (s Subject) Label() string { return labelOr(subjectLabels, s) }

func (l Language) Label() string { return labelOr(languageLabels, l) }

func (m Modality) Label() string { return labelOr(modalityLabels, m) }

func labelOr[K ~string](labels map[K]string, key K) string {
	if label, ok := labels[key]; ok {
		return label
	}
	return string(key)
}
