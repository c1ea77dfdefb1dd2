package legistartest

import "text/template"

var mainBodyTemplate = template.Must(template.New("main").Parse(`<!DOCTYPE html>
<html>
<head><title>City and County of San Francisco</title></head>
<body>
<form name="aspnetForm" method="post" action="./MainBody.aspx" id="aspnetForm">
<input type="hidden" name="__VIEWSTATE" id="__VIEWSTATE" value="main" />
<div id="ctl00_tabTop" class="RadTabStrip">
	<ul class="rtsUL">
		<li class="rtsLI"><a class="rtsLink" href="Calendar.aspx"><span class="rtsTxt">Calendar</span></a></li>
		<li class="rtsLI"><a class="rtsLink" href="Legislation.aspx"><span class="rtsTxt">Legislation</span></a></li>
		<li class="rtsLI"><a class="rtsLink" href="Votes.aspx"><span class="rtsTxt">Votes</span></a></li>
	</ul>
</div>
</form>
</body>
</html>`))

var votesTemplate = template.Must(template.New("votes").Parse(`<!DOCTYPE html>
<html>
<head><title>City and County of San Francisco - Votes</title></head>
<body>
<form name="aspnetForm" method="post" action="./Votes.aspx" id="aspnetForm">
<input type="hidden" name="__EVENTTARGET" id="__EVENTTARGET" value="" />
<input type="hidden" name="__EVENTARGUMENT" id="__EVENTARGUMENT" value="" />
<input type="hidden" name="__VIEWSTATE" id="__VIEWSTATE" value="{{.ViewState | html}}" />

<div id="ctl00_ContentPlaceHolder1_lstTimePeriodVoting" class="RadComboBox">
	<table class="rcbFocused"><tr>
		<td class="rcbInputCell"><input name="ctl00$ContentPlaceHolder1$lstTimePeriodVoting" type="text" class="rcbInput" id="ctl00_ContentPlaceHolder1_lstTimePeriodVoting_Input" value="{{.YearText | html}}" readonly="readonly" /></td>
		<td class="rcbArrowCell"><a id="ctl00_ContentPlaceHolder1_lstTimePeriodVoting_Arrow">select</a></td>
	</tr></table>
	<input id="ctl00_ContentPlaceHolder1_lstTimePeriodVoting_ClientState" name="ctl00_ContentPlaceHolder1_lstTimePeriodVoting_ClientState" type="hidden" />
</div>
<div class="rcbSlide">
	<div id="ctl00_ContentPlaceHolder1_lstTimePeriodVoting_DropDown" class="RadComboBoxDropDown"><div class="rcbScroll"><ul class="rcbList">
		{{- range .Years}}<li class="rcbItem">{{.Text | html}}</li>{{end -}}
	</ul></div></div>
</div>

<div id="ctl00_ContentPlaceHolder1_gridVoting" class="RadGrid">
<table class="rgMasterTable" id="ctl00_ContentPlaceHolder1_gridVoting_ctl00">
	<colgroup>{{range .Columns}}<col />{{end}}</colgroup>
	<thead>
		{{- if .ShowPager}}
		<tr class="rgPager">
			<td colspan="{{len .Columns}}"><table><tbody><tr>
				<td class="rgPagerCell NumericPages"><div class="rgWrap rgNumPart">
					{{- range .Pager}}
					{{- if .Current}}<a class="rgCurrentPage" href="{{.Href | html}}" onclick="returnfalse;"><span>{{.Label}}</span></a>
					{{- else if eq .Label "..."}}<a href="{{.Href | html}}" title="Next Pages">{{.Label}}</a>
					{{- else}}<a href="{{.Href | html}}"><span>{{.Label}}</span></a>{{end}}
					{{- end}}
				</div></td>
				<td class="rgPagerCell rgInfoPart"><div class="rgWrap rgInfoPart">{{.PageInfo | html}}</div></td>
			</tr></tbody></table></td>
		</tr>
		{{- end}}
		<tr>
			{{- range .Columns}}<th scope="col" class="rgHeader"><a href="javascript:void(0)">{{. | html}}</a></th>{{end -}}
		</tr>
	</thead>
	<tfoot></tfoot>
	<tbody>
	{{- if not .Rows}}
		<tr class="rgNoRecords"><td colspan="{{len .Columns}}"><div>No records to display.</div></td></tr>
	{{- end}}
	{{- range $i, $row := .Rows}}
		<tr class="rgRow" id="ctl00_ContentPlaceHolder1_gridVoting_ctl00__{{$i}}">
			{{- range $row}}<td>{{if .Href}}<a href="{{.Href | html}}">{{.Text | html}}</a>{{else if .Text}}{{.Text | html}}{{else}}&nbsp;{{end}}</td>{{end -}}
		</tr>
	{{- end}}
	</tbody>
</table>
</div>
</form>
</body>
</html>`))

var detailTemplate = template.Must(template.New("detail").Parse(`<!DOCTYPE html>
<html>
<head><title>City and County of San Francisco - File #: {{.FileNumber}}</title></head>
<body>
<form name="aspnetForm" method="post" id="aspnetForm">
<table>
	<tr><td>File #:</td><td><span id="ctl00_ContentPlaceHolder1_lblFile2">{{.FileNumber}}</span></td></tr>
	<tr><td>Type:</td><td><span id="ctl00_ContentPlaceHolder1_lblType2">{{.Proposal.ProposalType | html}}</span></td></tr>
	<tr><td>Status:</td><td><span id="ctl00_ContentPlaceHolder1_lblStatus2">{{.Proposal.Status | html}}</span></td></tr>
	{{- if not .Proposal.Malformed}}
	<tr><td>Introduced:</td><td><span id="ctl00_ContentPlaceHolder1_lblIntroduced2">{{.Proposal.Introduced | html}}</span></td></tr>
	{{- end}}
	<tr><td>Title:</td><td><span id="ctl00_ContentPlaceHolder1_lblTitle2">{{.Proposal.Title | html}}</span></td></tr>
</table>
</form>
</body>
</html>`))
