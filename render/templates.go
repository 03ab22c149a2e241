package render

const purchaseEmail = `
Beste {{.Sig.Client}},

Hartelijk dank voor uw bestelling. Hieronder vindt u de gegevens van uw nieuwe SEAT:

• Aanschafprijs: {{euro .Quote.PurchasePrice}}

Wij verzoeken u om deze gegevens te controleren. Als alles klopt, kunt u dit bericht beantwoorden met “Akkoord”
en wij nemen contact met u op om de verdere afhandeling in te plannen.
{{template "signature" .Sig}}`

const tradeInEmail = `
Beste {{.Sig.Client}},

Bedankt voor uw interesse in de nieuwe SEAT. Hieronder vindt u uw offertegegevens:

• Aanschafprijs auto: {{euro .CarPrice}}
• Inruilauto kenteken: {{text .Quote.TradeIn.LicensePlate}}
• Inruilprijs: {{euro .Quote.TradeIn.Value}}
• Totaal te betalen (na inruil): {{euro .Quote.TotalPayable}}

Als bovenstaande gegevens kloppen, kunt u dit bericht beantwoorden met “Akkoord” en wij nemen meteen
contact met u op voor het plannen van de aflevering.
{{template "signature" .Sig}}`

const leaseEmail = `
Beste {{.Sig.Client}},

Hartelijk dank voor uw aanvraag voor Private Lease. Hieronder staan de belangrijkste details van uw prijsvoorstel:

• Maandprijs (incl. BTW): {{euro .Quote.MonthlyPrice}}
• Jaarkilometrage: {{count .Quote.KmPerYear}} km
• Looptijd: {{count .Quote.TermMonths}} maanden
• Eigen risico: {{euro .Quote.Deductible}}
• Banden: {{text .Quote.Tires}}

Controleer alstublieft of bovenstaande klopt. Als u akkoord gaat, antwoord dan met “Akkoord” en wij
plannen het verdere traject voor u in.
{{template "signature" .Sig}}`

const signatureBlock = `{{define "signature"}}
Met vriendelijke groet,

{{.Name}}
{{.Title}}
Tel. {{.Phone}}
E-mail: {{.Email}}{{end}}`
